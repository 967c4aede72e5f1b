package contract

import (
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	logMu    sync.Mutex
	logLevel = hclog.Warn
	logOut   = io.Writer(os.Stderr)
)

// ConfigureLogging sets the level and sink used by every logger created
// afterwards. Stdout stays free for results and the MCP stdio transport.
func ConfigureLogging(level string, out io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	if lvl := hclog.LevelFromString(level); lvl != hclog.NoLevel {
		logLevel = lvl
	}
	if out != nil {
		logOut = out
	}
}

// NewLogger returns a named logger using the configured level and sink.
func NewLogger(name string) hclog.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Output: logOut,
		Level:  logLevel,
	})
}
