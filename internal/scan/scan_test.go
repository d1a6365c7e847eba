package scan

import (
	"reflect"
	"testing"
)

func TestBalanced_NestedAndStrings(t *testing.T) {
	src := `pgTable("users", { name: varchar("name", { length: 255 }), note: "a } b" })`
	open := 7 // the '(' after pgTable
	if src[open] != '(' {
		t.Fatalf("test offset wrong: got %q", src[open])
	}
	end, ok := Balanced(src, open)
	if !ok {
		t.Fatal("expected balanced match")
	}
	if end != len(src)-1 {
		t.Errorf("expected end at %d, got %d", len(src)-1, end)
	}
}

func TestBalanced_SkipsComments(t *testing.T) {
	src := "{ a: 1, // stray }\n b: 2 }"
	end, ok := Balanced(src, 0)
	if !ok {
		t.Fatal("expected balanced match")
	}
	if src[end] != '}' || end != len(src)-1 {
		t.Errorf("comment brace not skipped, end=%d", end)
	}
}

func TestBalanced_Unterminated(t *testing.T) {
	if _, ok := Balanced("{ a: {", 0); ok {
		t.Error("expected no match for unterminated body")
	}
}

func TestSplitTop(t *testing.T) {
	parts := SplitTop(`id serial PRIMARY KEY, name varchar(10, 2), tags text[]`, ',')
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %#v", len(parts), parts)
	}
	if parts[1] != " name varchar(10, 2)" {
		t.Errorf("nested comma split incorrectly: %q", parts[1])
	}
}

func TestPairs(t *testing.T) {
	body := ` id: serial("id").primaryKey(), name: varchar("name", { length: 255 }), ...rest, createdAt: timestamp("created_at") `
	pairs := Pairs(body)
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	want := []string{"id", "name", "createdAt"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("expected keys %v, got %v", want, keys)
	}
	if pairs[1].Value != `varchar("name", { length: 255 })` {
		t.Errorf("unexpected value for name: %q", pairs[1].Value)
	}
}

func TestPairs_QuotedAndOptionalKeys(t *testing.T) {
	pairs := Pairs(`"created_at": x, maybe?: y`)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Key != "created_at" || pairs[1].Key != "maybe" {
		t.Errorf("keys not normalized: %v", pairs)
	}
}

func TestStripComments_PreservesOffsets(t *testing.T) {
	src := "a /* x */ b // tail\nc"
	out := StripComments(src)
	if len(out) != len(src) {
		t.Fatalf("length changed: %d vs %d", len(out), len(src))
	}
	if out[0] != 'a' || out[len(out)-1] != 'c' {
		t.Errorf("content mangled: %q", out)
	}
	for i := 2; i < 9; i++ {
		if out[i] != ' ' {
			t.Errorf("comment byte %d not blanked: %q", i, out[i])
		}
	}
}

func TestBlankBoundBefore(t *testing.T) {
	text := "first block\nstill first\n\nsecond block\nanchor here"
	bound := BlankBoundBefore(text, len(text))
	if text[bound:bound+6] != "second" {
		t.Errorf("expected bound at second block, got %q", text[bound:])
	}
	if BlankBoundBefore("no blanks at all", 10) != 0 {
		t.Error("expected 0 for text without blank lines")
	}
}

func TestFences(t *testing.T) {
	md := "prose\n```ts\nconst a = 1;\n```\nmore\n```\nplain\n```\n"
	fences := Fences(md)
	if len(fences) != 2 {
		t.Fatalf("expected 2 fences, got %d", len(fences))
	}
	if fences[0].Info != "ts" {
		t.Errorf("expected info ts, got %q", fences[0].Info)
	}
	if fences[0].Content != "const a = 1;\n" {
		t.Errorf("unexpected content: %q", fences[0].Content)
	}
	if md[fences[0].Offset:fences[0].Offset+5] != "const" {
		t.Errorf("offset wrong: %d", fences[0].Offset)
	}
	if !InFence(fences, fences[1].Offset) {
		t.Error("InFence should report true inside second block")
	}
	if InFence(fences, 0) {
		t.Error("InFence should report false in prose")
	}
}

func TestLineOf(t *testing.T) {
	if got := LineOf("a\nb\nc", 4); got != 3 {
		t.Errorf("expected line 3, got %d", got)
	}
}
