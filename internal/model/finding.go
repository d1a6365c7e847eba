package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Finding is one reported hallucination with a stable, content-derived id.
type Finding struct {
	FindingID  string `json:"findingId"`
	Checker    string `json:"checker"`
	Severity   string `json:"severity"` // Always "error"
	Category   string `json:"category"`
	Target     string `json:"target"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// FindingID derives the content hash used as a finding id. Re-running
// against an unchanged project yields identical ids, so reports diff
// cleanly.
func FindingID(checker, category, target string) string {
	sum := sha256.Sum256([]byte(checker + ":" + category + ":" + target))
	return hex.EncodeToString(sum[:8])
}

// CheckerResult is the per-checker aggregate returned by a single run.
type CheckerResult struct {
	Checker        string      `json:"checker"`
	DisplayName    string      `json:"displayName"`
	Checked        int         `json:"checked"`
	Hallucinated   int         `json:"hallucinated"`
	Hallucinations []Reference `json:"hallucinations,omitempty"`

	// Applicable is false when the domain's artifacts are absent from the
	// project. Absence is not an error; the checker simply contributes
	// nothing.
	Applicable bool `json:"applicable"`

	// RawAnalysis carries ground-truth context (defined models, tables,
	// routes) for the assistant tool surface. Not part of the JSON report.
	RawAnalysis string `json:"-"`
}

// CheckOptions are per-invocation knobs supplied by the caller.
type CheckOptions struct {
	// SchemaPath overrides the schema DSL file location.
	SchemaPath string

	// AllowedNewPaths are globs for paths the plan may introduce without
	// being flagged. "*" matches one path segment, "**" any depth.
	AllowedNewPaths []string
}
