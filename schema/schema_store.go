package schema

import "time"

// CheckRun is the summary of one completed check, as recorded in history.
type CheckRun struct {
	Path        string
	StartTime   time.Time
	EndTime     time.Time
	Tools       []string
	FailedTools []string
	Findings    int
	Suppressed  int
}

// CheckRunRecord represents a row from the csmstyle_check_runs table.
type CheckRunRecord struct {
	RunID       int64
	FilePath    string
	StartTime   time.Time
	EndTime     *time.Time
	DurationMs  *int32
	Tools       string
	FailedTools *string
	Findings    int32
	Suppressed  int32
}
