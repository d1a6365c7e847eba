package model

import "time"

// SchemaVersion identifies the JSON report layout.
const SchemaVersion = "1.0"

// Report is the complete verification report for one (plan, project) pair.
type Report struct {
	SchemaVersion string    `json:"schemaVersion"`
	Timestamp     time.Time `json:"timestamp"`
	ProjectDir    string    `json:"projectDir"`
	Summary       Summary   `json:"summary"`
	Findings      []Finding `json:"findings"`

	// Review is the optional LLM review attached downstream. It never
	// affects findings.
	Review *ReviewSummary `json:"review,omitempty"`
}

// Summary aggregates per-checker outcomes.
type Summary struct {
	TotalChecked   int             `json:"totalChecked"`
	TotalFindings  int             `json:"totalFindings"`
	CheckerResults []CheckerTotals `json:"checkerResults"`
}

// CheckerTotals is the per-checker line in the report summary.
type CheckerTotals struct {
	Checker     string `json:"checker"`
	DisplayName string `json:"displayName"`
	Checked     int    `json:"checked"`
	Findings    int    `json:"findings"`
	Applicable  bool   `json:"applicable"`
}

// ReviewSummary is the optional hosted-model review of the findings.
type ReviewSummary struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Markdown string   `json:"markdown,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Cached   bool     `json:"cached,omitempty"`
}

// ExitCode returns the CLI exit code for the report: 0 when no applicable
// findings exist, 1 otherwise.
func (r *Report) ExitCode() int {
	if r.Summary.TotalFindings == 0 {
		return 0
	}
	return 1
}
