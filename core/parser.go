package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/csmstyle/schema"
)

// findingPattern matches "path:line:col: message" with a lazy path so that
// colons inside the message survive.
var findingPattern = regexp.MustCompile(`^(.+?):(\d+):(\d+): (.+)$`)

// noisePrefixes are summary and banner lines printed by pylint, pycodestyle and ruff.
// They are matched against the untrimmed line.
var noisePrefixes = []string{
	"********",
	"---",
	"Your code has been rated",
	"Found ",
	"[*]",
}

// isNoise reports whether a raw output line is a known non-finding line.
func isNoise(row string) bool {
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(row, prefix) {
			return true
		}
	}
	return false
}

// ParseLine converts one line of tool output into a Finding.
// The returned Finding has a zero-based line and no Path set.
func ParseLine(row string) (schema.Finding, bool) {
	if isNoise(row) {
		return schema.Finding{}, false
	}
	match := findingPattern.FindStringSubmatch(strings.TrimSpace(row))
	if match == nil {
		return schema.Finding{}, false
	}
	line, err := strconv.Atoi(match[2])
	if err != nil || line < 1 {
		return schema.Finding{}, false
	}
	column, err := strconv.Atoi(match[3])
	if err != nil {
		return schema.Finding{}, false
	}
	return schema.Finding{
		ReportedPath: match[1],
		Line:         line - 1,
		Column:       column,
		Message:      match[4],
	}, true
}

// ParseOutput parses every line of a tool's stdout, keeping line order.
// Lines have no length limit.
func ParseOutput(out []byte) []schema.Finding {
	var findings []schema.Finding
	for row := range strings.SplitSeq(string(out), "\n") {
		if f, ok := ParseLine(strings.TrimSuffix(row, "\r")); ok {
			findings = append(findings, f)
		}
	}
	return findings
}
