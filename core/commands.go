package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// User-facing command messages.
const (
	MsgViolationIgnored   = "Style violation ignored"
	MsgNoIgnored          = "No ignored violations"
	MsgNoIgnoredToClear   = "No ignored violations to clear"
	MsgAllIgnoredCleared  = "All ignored violations cleared"
	restorePickerTitle    = "Select ignored violations to restore"
	clearConfirmFormat    = "Clear all %d ignored violations?"
	restoredMessageFormat = "Restored %d ignored violation(s)"
)

// ErrUnknownCommand is returned by Execute for ids it does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Commands implements the user-invokable suppression commands.
type Commands struct {
	suppressions *SuppressionStore
	publisher    *Publisher
	docs         contract.DocumentProvider
	prompter     contract.Prompter
	logger       hclog.Logger
}

// NewCommands creates the command surface.
func NewCommands(suppressions *SuppressionStore, publisher *Publisher, docs contract.DocumentProvider, prompter contract.Prompter, logger hclog.Logger) *Commands {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Commands{
		suppressions: suppressions,
		publisher:    publisher,
		docs:         docs,
		prompter:     prompter,
		logger:       logger,
	}
}

// IgnoreViolation suppresses one finding, persists the set and rechecks the
// document when it is open. Nothing is reported to the user unless the
// persist succeeded.
func (c *Commands) IgnoreViolation(ctx context.Context, path string, line int, message string) error {
	key := ViolationKey(path, line, message)
	added := !c.suppressions.Has(key)
	c.suppressions.Add(key)
	if err := c.suppressions.Persist(); err != nil {
		if added {
			c.suppressions.Remove(key)
		}
		return fmt.Errorf("failed to ignore violation: %w", err)
	}
	c.logger.Debug("ignored violation", "path", path, "line", line+1)

	if doc, ok := c.docs.FindDocument(path); ok {
		c.publisher.Recheck(ctx, doc)
	}
	c.prompter.Info(MsgViolationIgnored)
	return nil
}

// ManageIgnored lets the user pick suppressed findings to restore.
func (c *Commands) ManageIgnored(ctx context.Context) error {
	entries := c.suppressions.Entries()
	if len(entries) == 0 {
		c.prompter.Info(MsgNoIgnored)
		return nil
	}

	items := make([]contract.PickItem, len(entries))
	for i, entry := range entries {
		items[i] = contract.PickItem{
			Label:       entry.Label(),
			Description: entry.Message,
			Detail:      entry.Path,
			Value:       entry.Key,
		}
	}
	selected, err := c.prompter.PickMany(ctx, restorePickerTitle, items)
	if err != nil {
		return fmt.Errorf("failed to select ignored violations: %w", err)
	}
	if len(selected) == 0 {
		return nil
	}

	keys := make([]string, len(selected))
	var paths []string
	seen := make(map[string]struct{})
	for i, item := range selected {
		keys[i] = item.Value
		if _, ok := seen[item.Detail]; ok {
			continue
		}
		seen[item.Detail] = struct{}{}
		paths = append(paths, item.Detail)
	}

	c.suppressions.RemoveMany(keys)
	if err := c.suppressions.Persist(); err != nil {
		c.suppressions.AddMany(keys)
		return fmt.Errorf("failed to restore ignored violations: %w", err)
	}

	c.publisher.Sweep(ctx, c.findDocuments(paths), true)
	c.prompter.Info(fmt.Sprintf(restoredMessageFormat, len(selected)))
	return nil
}

// ClearAllIgnored drops every suppression after confirmation.
func (c *Commands) ClearAllIgnored(ctx context.Context) error {
	count := c.suppressions.Len()
	if count == 0 {
		c.prompter.Info(MsgNoIgnoredToClear)
		return nil
	}
	ok, err := c.prompter.Confirm(ctx, fmt.Sprintf(clearConfirmFormat, count))
	if err != nil {
		return fmt.Errorf("failed to confirm clearing ignored violations: %w", err)
	}
	if !ok {
		return nil
	}

	previous := c.suppressions.Keys()
	c.suppressions.Clear()
	if err := c.suppressions.Persist(); err != nil {
		c.suppressions.AddMany(previous)
		return fmt.Errorf("failed to clear ignored violations: %w", err)
	}

	c.publisher.Sweep(ctx, c.checkedDocuments(), false)
	c.prompter.Info(MsgAllIgnoredCleared)
	return nil
}

// Execute dispatches a command by id. IgnoreViolationCommand takes
// (path string, line int, message string).
func (c *Commands) Execute(ctx context.Context, id schema.CommandID, args ...any) error {
	switch id {
	case schema.IgnoreViolationCommand:
		path, line, message, err := ignoreArgs(args)
		if err != nil {
			return err
		}
		return c.IgnoreViolation(ctx, path, line, message)
	case schema.ManageIgnoredCommand:
		return c.ManageIgnored(ctx)
	case schema.ClearAllIgnoredCommand:
		return c.ClearAllIgnored(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
}

// ignoreArgs validates the positional arguments of the ignore command.
func ignoreArgs(args []any) (string, int, string, error) {
	if len(args) != 3 {
		return "", 0, "", fmt.Errorf("%s expects 3 arguments, got %d", schema.IgnoreViolationCommand, len(args))
	}
	path, ok := args[0].(string)
	if !ok {
		return "", 0, "", fmt.Errorf("%s: path must be a string", schema.IgnoreViolationCommand)
	}
	var line int
	switch v := args[1].(type) {
	case int:
		line = v
	case int64:
		line = int(v)
	case float64:
		line = int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", 0, "", fmt.Errorf("%s: invalid line %q: %w", schema.IgnoreViolationCommand, v, err)
		}
		line = n
	default:
		return "", 0, "", fmt.Errorf("%s: line must be a number", schema.IgnoreViolationCommand)
	}
	message, ok := args[2].(string)
	if !ok {
		return "", 0, "", fmt.Errorf("%s: message must be a string", schema.IgnoreViolationCommand)
	}
	return path, line, message, nil
}

// findDocuments resolves paths to open documents, skipping closed ones.
func (c *Commands) findDocuments(paths []string) []contract.Document {
	var docs []contract.Document
	for _, path := range paths {
		if doc, ok := c.docs.FindDocument(path); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// checkedDocuments lists open documents in the checked language.
func (c *Commands) checkedDocuments() []contract.Document {
	language := c.publisher.Checker().Language()
	var docs []contract.Document
	for _, doc := range c.docs.OpenDocuments() {
		if doc.LanguageID() == language {
			docs = append(docs, doc)
		}
	}
	return docs
}
