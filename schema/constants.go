package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// Severity represents how a diagnostic is presented.
	Severity string

	// CommandID identifies a user-invokable command.
	CommandID string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All severities supported. Every finding is published as an error.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// All commands exposed to the editor.
const (
	IgnoreViolationCommand CommandID = "ncea-csm-style.ignoreSpecificViolation"
	ManageIgnoredCommand   CommandID = "ncea-csm-style.manageIgnored"
	ClearAllIgnoredCommand CommandID = "ncea-csm-style.clearAllIgnored"
)

const (
	// SourceTag marks every diagnostic produced by this system.
	SourceTag = "CSM Style"

	// CheckedLanguage is the only language id that gets checked.
	CheckedLanguage = "python"

	// IgnoredViolationsKey is the storage key prefix for the suppression set.
	IgnoredViolationsKey = "ignoredViolations"

	// ExplanationSeparator divides the original tool message from its explanation.
	ExplanationSeparator = "\n\n---\n\n"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllCommands lists every command in registration order.
var AllCommands = []CommandID{IgnoreViolationCommand, ManageIgnoredCommand, ClearAllIgnoredCommand}
