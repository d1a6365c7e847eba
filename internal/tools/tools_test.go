package tools

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/groundcheck/internal/checker"
)

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "auth.ts"), []byte("export {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestTools_OnePerCheckerPlusVerifyAll(t *testing.T) {
	set := New(checker.NewRegistry(nil))
	tools := set.Tools()

	names := make(map[string]bool)
	for _, tool := range tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"check_files", "check_schema", "check_routes", "verify_all"} {
		if !names[want] {
			t.Errorf("tool %s missing from %v", want, tools)
		}
	}
}

func TestInvoke_SingleChecker(t *testing.T) {
	set := New(checker.NewRegistry(nil))
	out, err := set.Invoke("check_files", Args{
		ProjectDir: project(t),
		Plan:       "Modify src/auth.ts and src/ghost.ts.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "src/ghost.ts") {
		t.Errorf("missing file not reported:\n%s", out)
	}
	if !strings.Contains(out, "files indexed") {
		t.Errorf("ground-truth context missing:\n%s", out)
	}
}

func TestInvoke_VerifyAll(t *testing.T) {
	set := New(checker.NewRegistry(nil))
	out, err := set.Invoke("verify_all", Args{
		ProjectDir: project(t),
		Plan:       "Modify src/ghost.ts.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "src/ghost.ts") {
		t.Errorf("finding missing from consolidated output:\n%s", out)
	}
}

func TestInvoke_UnknownTool(t *testing.T) {
	set := New(checker.NewRegistry(nil))
	if _, err := set.Invoke("check_nothing", Args{ProjectDir: t.TempDir(), Plan: "x"}); err == nil {
		t.Error("unknown tool should error")
	}
}

func TestInvoke_PlanPath(t *testing.T) {
	dir := project(t)
	planFile := filepath.Join(t.TempDir(), "plan.md")
	if err := os.WriteFile(planFile, []byte("Edit src/auth.ts."), 0o644); err != nil {
		t.Fatal(err)
	}
	set := New(checker.NewRegistry(nil))
	out, err := set.Invoke("check_files", Args{ProjectDir: dir, PlanPath: planFile})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "0 finding(s)") {
		t.Errorf("clean plan should report no findings:\n%s", out)
	}
}

func TestServer_LineDelimitedJSON(t *testing.T) {
	dir := project(t)
	set := New(checker.NewRegistry(nil))
	srv := NewServer(set)

	args, _ := json.Marshal(Args{ProjectDir: dir, Plan: "Edit src/ghost.ts."})
	var in bytes.Buffer
	in.WriteString(`{"id":1,"tool":"list_tools"}` + "\n")
	in.WriteString(`{"id":2,"tool":"check_files","args":` + string(args) + `}` + "\n")
	in.WriteString("not json\n")

	var out bytes.Buffer
	if err := srv.Serve(&in, &out); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d responses, want 3:\n%s", len(lines), out.String())
	}

	var first Response
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first.ID != 1 || len(first.Tools) == 0 {
		t.Errorf("list_tools response wrong: %+v", first)
	}

	var second Response
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if second.ID != 2 || !strings.Contains(second.Result, "src/ghost.ts") {
		t.Errorf("check_files response wrong: %+v", second)
	}

	var third Response
	if err := json.Unmarshal([]byte(lines[2]), &third); err != nil {
		t.Fatal(err)
	}
	if third.Error == "" {
		t.Error("malformed line should produce an error response")
	}
}
