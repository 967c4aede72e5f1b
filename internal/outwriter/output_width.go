package outwriter

import (
	"os"

	"github.com/huangsam/csmstyle/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// MaxMessageWidth calculates the maximum width for violation messages in
// table output based on terminal width.
func MaxMessageWidth(cfg *contract.Config) int {
	// Index + File + Line with borders/padding
	baseWidth := 8 + maxTablePathWidth(cfg) + 10

	// Reserve space for table borders, separators, and padding
	baseWidth += 10

	available := terminalWidth(cfg) - baseWidth
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}

// maxTablePathWidth bounds the file column to a third of the terminal.
func maxTablePathWidth(cfg *contract.Config) int {
	width := terminalWidth(cfg) / 3
	if width < 15 {
		return 15
	}
	if width > 50 {
		return 50
	}
	return width
}
