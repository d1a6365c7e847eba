// Package report assembles checker results into the consolidated text
// summary and the versioned JSON report.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/model"
)

// Assemble merges checker results into a report. Finding ids are
// content-derived, so an unchanged (project, plan) pair assembles to
// identical findings across runs.
func Assemble(projectDir string, results []*model.CheckerResult) *model.Report {
	r := &model.Report{
		SchemaVersion: model.SchemaVersion,
		Timestamp:     time.Now().UTC(),
		ProjectDir:    projectDir,
		Findings:      []model.Finding{},
	}
	for _, res := range results {
		r.Summary.CheckerResults = append(r.Summary.CheckerResults, model.CheckerTotals{
			Checker:     res.Checker,
			DisplayName: res.DisplayName,
			Checked:     res.Checked,
			Findings:    res.Hallucinated,
			Applicable:  res.Applicable,
		})
		if !res.Applicable {
			continue
		}
		r.Summary.TotalChecked += res.Checked
		r.Summary.TotalFindings += res.Hallucinated
		for _, h := range res.Hallucinations {
			target := h.Target()
			r.Findings = append(r.Findings, model.Finding{
				FindingID:  model.FindingID(res.Checker, h.Subcategory, target),
				Checker:    res.Checker,
				Severity:   "error",
				Category:   h.Subcategory,
				Target:     target,
				Message:    findingMessage(res.DisplayName, h),
				Suggestion: h.Suggestion,
			})
		}
	}
	return r
}

func findingMessage(domain string, h model.Reference) string {
	return fmt.Sprintf("%s: %s not found (%s)", domain, h.Target(), h.Subcategory)
}

// RenderText renders the grouped text summary: one line per checker
// with findings beneath, skipped domains listed separately.
func RenderText(rep *model.Report, results []*model.CheckerResult) string {
	var b strings.Builder
	b.WriteString("Plan verification\n")
	b.WriteString(strings.Repeat("═", 40) + "\n")

	var skipped []string
	for _, res := range results {
		if !res.Applicable {
			skipped = append(skipped, res.DisplayName)
			continue
		}
		b.WriteString(checker.Section(res))
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, "Skipped (not present in project): %s\n", strings.Join(skipped, ", "))
	}
	b.WriteString(strings.Repeat("─", 40) + "\n")
	fmt.Fprintf(&b, "Checked %d reference(s), %d finding(s)\n",
		rep.Summary.TotalChecked, rep.Summary.TotalFindings)
	if rep.Review != nil && rep.Review.Markdown != "" {
		b.WriteString("\nReview\n")
		b.WriteString(rep.Review.Markdown)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderJSON renders the versioned machine-readable report.
func RenderJSON(rep *model.Report) ([]byte, error) {
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return append(out, '\n'), nil
}

// Excerpt renders the LLM-context findings excerpt for every checker
// that produced findings. Empty when the plan is clean.
func Excerpt(results []*model.CheckerResult) string {
	var b strings.Builder
	for _, res := range results {
		b.WriteString(checker.FindingsExcerpt(res))
	}
	return b.String()
}
