package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/schema"
)

// Default values for configuration.
const (
	DefaultLanguage    = schema.CheckedLanguage
	DefaultToolTimeout = "30s"
	DefaultDebounce    = "300ms"
	DefaultLogLevel    = "warn"
	DefaultConfigDir   = ".csmstyle"
)

// DefaultWorkers is the default number of concurrent re-checks.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Template placeholders expanded in tool arguments.
const (
	FilePlaceholder      = "{file}"
	ConfigDirPlaceholder = "{config_dir}"
)

// DefaultTools returns the tool set run against every checked document.
func DefaultTools() []schema.ToolSpec {
	return []schema.ToolSpec{
		{Name: "pycodestyle", Command: "python", Args: []string{"{config_dir}/custom_pycodestyle.py", FilePlaceholder}},
		{Name: "pylint", Command: "pylint", Args: []string{"--rcfile", "{config_dir}/.pylintrc", FilePlaceholder}},
		{Name: "ruff", Command: "ruff", Args: []string{"check", "--config", "{config_dir}/pyproject.toml", "--preview", FilePlaceholder}},
	}
}

// Config holds the runtime configuration for a session.
// This struct remains the "final, validated" config.
type Config struct {
	WorkspaceRoot string
	Files         []string // absolute paths from positional args
	Language      string
	ConfigDir     string
	Tools         []schema.ToolSpec
	ToolTimeout   time.Duration // 0 disables the per-tool limit
	Debounce      time.Duration
	Workers       int
	Explanations  string
	Output        schema.OutputMode
	OutputFile    string
	Width         int // Terminal width override (0 = auto-detect)
	Yes           bool
	LogLevel      string

	StateBackend   schema.DatabaseBackend
	StateDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	FileArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Workspace        string `mapstructure:"workspace"`
	Language         string `mapstructure:"language"`
	ConfigDir        string `mapstructure:"config-dir"`
	ToolTimeout      string `mapstructure:"tool-timeout"`
	Workers          int    `mapstructure:"workers"`
	Explanations     string `mapstructure:"explanations"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	StateBackend     string `mapstructure:"state-backend"`
	StateDBConnect   string `mapstructure:"state-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from subcommand flags ---
	Yes      bool   `mapstructure:"yes"`
	Debounce string `mapstructure:"debounce"`

	// --- Tool definitions from config file ---
	Tools []schema.ToolSpec `mapstructure:"tools"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Files != nil {
		clone.Files = make([]string, len(c.Files))
		copy(clone.Files, c.Files)
	}
	if c.Tools != nil {
		clone.Tools = make([]schema.ToolSpec, len(c.Tools))
		for i, tool := range c.Tools {
			tool.Args = append([]string(nil), tool.Args...)
			clone.Tools[i] = tool
		}
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveWorkspacePaths(cfg, input); err != nil {
		return err
	}
	if err := processTools(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates state and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- State Backend Validation ---
	cfg.StateBackend = schema.DatabaseBackend(strings.ToLower(input.StateBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StateBackend]; !ok {
		return fmt.Errorf("invalid state backend '%s'. must be sqlite, mysql, postgresql, none", input.StateBackend)
	}
	cfg.StateDBConnect = input.StateDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StateBackend, cfg.StateDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// State and history tables live side by side only on a server database
	if cfg.StateBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		statePath := cfg.StateDBConnect
		if statePath == "" {
			statePath = GetStateDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if statePath == historyPath {
			return fmt.Errorf("state and history storage must use different SQLite database files. Both resolve to %q", statePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Yes = input.Yes
	cfg.Explanations = strings.TrimSpace(input.Explanations)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Language = strings.ToLower(strings.TrimSpace(input.Language))
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json", input.Output)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if hclog.LevelFromString(cfg.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("invalid log level '%s'. must be trace, debug, info, warn, error", input.LogLevel)
	}

	if cfg.ToolTimeout, err = parseDuration("tool-timeout", input.ToolTimeout, DefaultToolTimeout); err != nil {
		return err
	}
	if cfg.Debounce, err = parseDuration("debounce", input.Debounce, DefaultDebounce); err != nil {
		return err
	}
	return nil
}

// parseDuration parses a non-negative duration, falling back to def when empty.
func parseDuration(name, value, def string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		value = def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative (received %s)", name, value)
	}
	return d, nil
}

// resolveWorkspacePaths makes the workspace, config dir, and file args absolute.
func resolveWorkspacePaths(cfg *Config, input *ConfigRawInput) error {
	root := input.Workspace
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace %q: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("workspace %q is not accessible: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace %q is not a directory", root)
	}
	cfg.WorkspaceRoot = absRoot

	cfg.ConfigDir = input.ConfigDir
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(absRoot, DefaultConfigDir)
	} else if !filepath.IsAbs(cfg.ConfigDir) {
		cfg.ConfigDir = filepath.Join(absRoot, cfg.ConfigDir)
	}

	if cfg.Explanations != "" && !filepath.IsAbs(cfg.Explanations) {
		cfg.Explanations = filepath.Join(absRoot, cfg.Explanations)
	}

	cfg.Files = cfg.Files[:0]
	for _, arg := range input.FileArgs {
		p := arg
		if !filepath.IsAbs(p) {
			p = filepath.Join(absRoot, p)
		}
		cfg.Files = append(cfg.Files, filepath.Clean(p))
	}
	return nil
}

// processTools applies the default tool set and validates custom definitions.
func processTools(cfg *Config, input *ConfigRawInput) error {
	tools := input.Tools
	if len(tools) == 0 {
		tools = DefaultTools()
	}
	seen := make(map[string]struct{}, len(tools))
	cfg.Tools = make([]schema.ToolSpec, 0, len(tools))
	for i, tool := range tools {
		tool.Name = strings.TrimSpace(tool.Name)
		tool.Command = strings.TrimSpace(tool.Command)
		if tool.Name == "" {
			return fmt.Errorf("tool #%d is missing a name", i+1)
		}
		if tool.Command == "" {
			return fmt.Errorf("tool %q is missing a command", tool.Name)
		}
		if _, dup := seen[tool.Name]; dup {
			return fmt.Errorf("tool %q is defined more than once", tool.Name)
		}
		seen[tool.Name] = struct{}{}
		cfg.Tools = append(cfg.Tools, tool)
	}
	return nil
}

// ExpandToolArgs substitutes the file and config dir placeholders in a tool's arguments.
func ExpandToolArgs(args []string, file, configDir string) []string {
	r := strings.NewReplacer(FilePlaceholder, file, ConfigDirPlaceholder, configDir)
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = r.Replace(arg)
	}
	return out
}
