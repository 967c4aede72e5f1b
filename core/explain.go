package core

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/csmstyle/schema"
	"gopkg.in/yaml.v3"
)

// ruleCodePatterns extract a rule code from the start of a tool message.
var ruleCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Z]\d{3})\s`),  // E501, Q000
	regexp.MustCompile(`^([A-Z]{3}\d+)\s`), // CSM1, CSM2
	regexp.MustCompile(`^([A-Z]\d{4}):`),   // C0103: (pylint)
}

// RuleExplainer attaches long-form explanations to diagnostics by rule code.
// A nil RuleExplainer explains nothing.
type RuleExplainer struct {
	rules map[string]schema.RuleExplanation
}

// NewRuleExplainer builds an explainer from code to explanation entries.
func NewRuleExplainer(rules map[string]schema.RuleExplanation) *RuleExplainer {
	e := &RuleExplainer{rules: make(map[string]schema.RuleExplanation, len(rules))}
	for code, rule := range rules {
		if rule.Code == "" {
			rule.Code = code
		}
		e.rules[code] = rule
	}
	return e
}

// LoadRuleExplanations reads a YAML or JSON file mapping rule codes to explanations.
func LoadRuleExplanations(path string) (*RuleExplainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule explanations: %w", err)
	}
	var rules map[string]schema.RuleExplanation
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rule explanations %q: %w", path, err)
	}
	return NewRuleExplainer(rules), nil
}

// RuleCode extracts the rule code a message starts with, if any.
func RuleCode(message string) (string, bool) {
	for _, pattern := range ruleCodePatterns {
		if match := pattern.FindStringSubmatch(message); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// Lookup returns the explanation for the rule a message refers to.
// Only the first matching code pattern is consulted.
func (e *RuleExplainer) Lookup(message string) (schema.RuleExplanation, bool) {
	if e == nil {
		return schema.RuleExplanation{}, false
	}
	code, ok := RuleCode(message)
	if !ok {
		return schema.RuleExplanation{}, false
	}
	rule, ok := e.rules[code]
	return rule, ok
}

// Enhance appends the rule explanation to a message. Messages without a
// known rule are returned unchanged.
func (e *RuleExplainer) Enhance(message string) string {
	rule, ok := e.Lookup(message)
	if !ok {
		return message
	}
	var b strings.Builder
	b.WriteString(message)
	b.WriteString(schema.ExplanationSeparator)
	b.WriteString(rule.Description)
	if rule.Rationale != "" {
		b.WriteString("\n\n**Rationale:** ")
		b.WriteString(rule.Rationale)
	}
	if rule.CSMRelation != "" {
		b.WriteString("\n\n**CSM Relation:** ")
		b.WriteString(rule.CSMRelation)
	}
	return b.String()
}

// NewDiagnostic builds an error diagnostic for a tool message over rng.
func (e *RuleExplainer) NewDiagnostic(rng schema.Range, message string) schema.Diagnostic {
	diag := schema.Diagnostic{
		Range:    rng,
		Message:  e.Enhance(message),
		Severity: schema.SeverityError,
		Source:   schema.SourceTag,
	}
	if rule, ok := e.Lookup(message); ok {
		diag.Code = rule.Code
	}
	return diag
}

// Codes lists every known rule code in sorted order.
func (e *RuleExplainer) Codes() []string {
	if e == nil {
		return nil
	}
	codes := make([]string, 0, len(e.rules))
	for code := range e.rules {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Explanation returns the explanation for a rule code.
func (e *RuleExplainer) Explanation(code string) (schema.RuleExplanation, bool) {
	if e == nil {
		return schema.RuleExplanation{}, false
	}
	rule, ok := e.rules[code]
	return rule, ok
}
