// Package prompt implements the user-facing message and selection surface.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/huangsam/csmstyle/internal/contract"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a selection needs a terminal and none is attached.
var ErrNotInteractive = errors.New("selection requires an interactive terminal")

// Interactive prompts on the terminal using huh forms.
type Interactive struct {
	out io.Writer
}

var _ contract.Prompter = &Interactive{} // Compile-time check

// NewInteractive creates a terminal prompter that prints messages to out.
func NewInteractive(out io.Writer) *Interactive {
	return &Interactive{out: out}
}

// Info prints a message.
func (p *Interactive) Info(msg string) {
	_, _ = fmt.Fprintln(p.out, msg)
}

// Confirm asks a yes/no question. Aborting counts as no.
func (p *Interactive) Confirm(ctx context.Context, msg string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(msg).Affirmative("Yes").Negative("No").Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}

// PickMany offers items for multi-selection. Aborting selects nothing.
func (p *Interactive) PickMany(ctx context.Context, title string, items []contract.PickItem) ([]contract.PickItem, error) {
	byValue := make(map[string]contract.PickItem, len(items))
	options := make([]huh.Option[string], len(items))
	for i, item := range items {
		byValue[item.Value] = item
		label := item.Label
		if item.Description != "" {
			label += "  " + item.Description
		}
		options[i] = huh.NewOption(label, item.Value)
	}

	var values []string
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().Title(title).Options(options...).Value(&values),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, fmt.Errorf("selection failed: %w", err)
	}

	selected := make([]contract.PickItem, 0, len(values))
	for _, v := range values {
		selected = append(selected, byValue[v])
	}
	return selected, nil
}

// Auto answers prompts without a terminal, for scripts and CI.
type Auto struct {
	out io.Writer
	yes bool
}

var _ contract.Prompter = &Auto{} // Compile-time check

// NewAuto creates a non-interactive prompter. yes is the answer to every confirmation.
func NewAuto(out io.Writer, yes bool) *Auto {
	return &Auto{out: out, yes: yes}
}

// Info prints a message.
func (p *Auto) Info(msg string) {
	_, _ = fmt.Fprintln(p.out, msg)
}

// Confirm answers with the configured choice and echoes the question.
func (p *Auto) Confirm(_ context.Context, msg string) (bool, error) {
	answer := "no"
	if p.yes {
		answer = "yes"
	}
	_, _ = fmt.Fprintf(p.out, "%s [%s]\n", msg, answer)
	return p.yes, nil
}

// PickMany cannot choose on the user's behalf.
func (p *Auto) PickMany(context.Context, string, []contract.PickItem) ([]contract.PickItem, error) {
	return nil, ErrNotInteractive
}

// Scripted answers prompts programmatically and records every message.
type Scripted struct {
	mu       sync.Mutex
	confirm  bool
	pick     func([]contract.PickItem) []contract.PickItem
	messages []string
}

var _ contract.Prompter = &Scripted{} // Compile-time check

// NewScripted creates a prompter that confirms with confirm and selects
// with pick. A nil pick selects nothing.
func NewScripted(confirm bool, pick func([]contract.PickItem) []contract.PickItem) *Scripted {
	return &Scripted{confirm: confirm, pick: pick}
}

// SelectValues returns a pick function choosing items by value.
func SelectValues(values ...string) func([]contract.PickItem) []contract.PickItem {
	wanted := make(map[string]struct{}, len(values))
	for _, v := range values {
		wanted[v] = struct{}{}
	}
	return func(items []contract.PickItem) []contract.PickItem {
		var out []contract.PickItem
		for _, item := range items {
			if _, ok := wanted[item.Value]; ok {
				out = append(out, item)
			}
		}
		return out
	}
}

// Info records a message.
func (p *Scripted) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

// Confirm returns the scripted answer.
func (p *Scripted) Confirm(context.Context, string) (bool, error) {
	return p.confirm, nil
}

// PickMany applies the scripted selection.
func (p *Scripted) PickMany(_ context.Context, _ string, items []contract.PickItem) ([]contract.PickItem, error) {
	if p.pick == nil {
		return nil, nil
	}
	return p.pick(items), nil
}

// Messages returns every recorded message in order.
func (p *Scripted) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.messages...)
}

// ForTerminal picks the interactive prompter when stdin and stdout are
// terminals and yes was not requested.
func ForTerminal(yes bool) contract.Prompter {
	if !yes && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return NewInteractive(os.Stdout)
	}
	return NewAuto(os.Stdout, yes)
}
