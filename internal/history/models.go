package history

import "time"

// Status summarizes the outcome of a check run.
type Status string

const (
	// StatusClean means the file parsed and produced no diagnostics.
	StatusClean Status = "clean"
	// StatusIssues means the file parsed but validation reported problems.
	StatusIssues Status = "issues"
	// StatusFailed means the file could not be parsed.
	StatusFailed Status = "failed"
)

// Run is one recorded check of a KBP file.
type Run struct {
	ID            string    `json:"id"`
	File          string    `json:"file"`
	CheckedAt     time.Time `json:"checked_at"`
	Status        Status    `json:"status"`
	Synced        bool      `json:"synced"`
	Pages         int       `json:"pages"`
	Styles        int       `json:"styles"`
	Diagnostics   int       `json:"diagnostics"`
	Modifications int       `json:"modifications"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// StatusFor derives a run status from a parse error and a diagnostic count.
func StatusFor(parseErr error, diagnostics int) Status {
	switch {
	case parseErr != nil:
		return StatusFailed
	case diagnostics > 0:
		return StatusIssues
	default:
		return StatusClean
	}
}
