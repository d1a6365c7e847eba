package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/groundcheck/internal/model"
)

func sampleResults() []*model.CheckerResult {
	return []*model.CheckerResult{
		{
			Checker: "files", DisplayName: "File paths", Checked: 4,
			Hallucinated: 1, Applicable: true,
			Hallucinations: []model.Reference{{
				RawReference: model.RawReference{Category: model.CategoryFile, Name: "src/ghost.ts", Raw: "src/ghost.ts"},
				Subcategory:  "missing_file",
			}},
		},
		{Checker: "schema", DisplayName: "Schema models", Applicable: false},
	}
}

func TestAssemble_SummaryAndFindings(t *testing.T) {
	rep := Assemble("/proj", sampleResults())

	if rep.SchemaVersion != model.SchemaVersion {
		t.Errorf("schema version %q", rep.SchemaVersion)
	}
	if rep.Summary.TotalChecked != 4 || rep.Summary.TotalFindings != 1 {
		t.Errorf("summary totals wrong: %+v", rep.Summary)
	}
	if len(rep.Summary.CheckerResults) != 2 {
		t.Errorf("inapplicable checker missing from summary")
	}
	if len(rep.Findings) != 1 {
		t.Fatalf("findings = %d", len(rep.Findings))
	}
	f := rep.Findings[0]
	if f.Severity != "error" || f.Checker != "files" || f.Target != "src/ghost.ts" {
		t.Errorf("finding fields wrong: %+v", f)
	}
	if f.FindingID == "" {
		t.Error("finding id empty")
	}
	if rep.ExitCode() != 1 {
		t.Error("exit code should be 1 with findings")
	}
}

func TestAssemble_FindingIDsStableAcrossRuns(t *testing.T) {
	first := Assemble("/proj", sampleResults())
	second := Assemble("/proj", sampleResults())
	if first.Findings[0].FindingID != second.Findings[0].FindingID {
		t.Error("finding id changed between identical runs")
	}
}

func TestAssemble_CleanReportExitsZero(t *testing.T) {
	rep := Assemble("/proj", []*model.CheckerResult{
		{Checker: "files", DisplayName: "File paths", Checked: 2, Applicable: true},
	})
	if rep.ExitCode() != 0 {
		t.Error("clean report should exit 0")
	}
	if rep.Findings == nil {
		t.Error("findings must encode as [], not null")
	}
}

func TestRenderText(t *testing.T) {
	results := sampleResults()
	out := RenderText(Assemble("/proj", results), results)

	if !strings.Contains(out, "File paths") {
		t.Error("checker line missing")
	}
	if !strings.Contains(out, "Skipped (not present in project): Schema models") {
		t.Errorf("skipped domain list missing:\n%s", out)
	}
	if !strings.Contains(out, "Checked 4 reference(s), 1 finding(s)") {
		t.Errorf("totals line missing:\n%s", out)
	}
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	rep := Assemble("/proj", sampleResults())
	data, err := RenderJSON(rep)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.SchemaVersion != "1.0" || len(decoded.Findings) != 1 {
		t.Errorf("decoded report wrong: %+v", decoded)
	}
}

func TestExcerpt_OnlyFindings(t *testing.T) {
	out := Excerpt(sampleResults())
	if !strings.Contains(out, "src/ghost.ts") {
		t.Error("finding missing from excerpt")
	}
	clean := Excerpt([]*model.CheckerResult{{Checker: "files", DisplayName: "File paths", Applicable: true}})
	if clean != "" {
		t.Errorf("clean excerpt should be empty, got %q", clean)
	}
}
