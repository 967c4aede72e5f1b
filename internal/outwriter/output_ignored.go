package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteIgnored outputs the suppressed violations, dispatching based on the output format configured.
func WriteIgnored(entries []schema.ViolationEntry, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if entries == nil {
				entries = []schema.ViolationEntry{}
			}
			return writeJSON(w, entries)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIgnoredTable(w, entries, cfg)
		}, "Wrote table")
	}
}

// writeIgnoredTable generates and writes the human-readable table.
func writeIgnoredTable(w io.Writer, entries []schema.ViolationEntry, cfg *contract.Config) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No ignored violations")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "File", "Line", "Message"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	pathWidth := maxTablePathWidth(cfg)
	messageWidth := MaxMessageWidth(cfg)
	data := make([][]string, 0, len(entries))
	for i, entry := range entries {
		path := entry.Path
		if cfg.WorkspaceRoot != "" {
			path = contract.RelativePath(cfg.WorkspaceRoot, path)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(path, pathWidth),
			strconv.Itoa(entry.Line + 1),
			contract.TruncateText(entry.Message, messageWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %s\n", Pluralize(len(entries), "ignored violation"))
	return err
}
