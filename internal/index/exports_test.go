package index

import (
	"testing"
	"time"

	"github.com/ppiankov/groundcheck/internal/cache"
)

func zodFixture(t *testing.T) *FileTree {
	t.Helper()
	return writeProject(t, map[string]string{
		"node_modules/zod/package.json": `{
  "name": "zod",
  "main": "./lib/index.js",
  "exports": {
    ".": {
      "types": "./index.d.ts",
      "import": "./lib/index.mjs",
      "require": "./lib/index.js"
    },
    "./locales": { "types": "./locales.d.ts" }
  }
}`,
		"node_modules/zod/index.d.ts": `
export declare function string(params?: unknown): ZodString;
export declare function object(shape: unknown): ZodObject;
export declare const ZodIssueCode: unknown;
export interface ZodString {
  min(length: number): ZodString
  email(): ZodString
  readonly description: string
}
export type infer<T> = T;
export { parse, safeParse as tryParse, type ZodTypeAny } from './parsing';
export * from './errors';
export default string;
`,
		"node_modules/zod/parsing.d.ts": `
export declare function parse(data: unknown): unknown;
export declare function safeParse(data: unknown): unknown;
export type ZodTypeAny = unknown;
`,
		"node_modules/zod/errors.d.ts": `
export declare class ZodError {
  issues: unknown[]
  format(): unknown
}
`,
		"node_modules/zod/locales.d.ts": `export declare const en: unknown;`,
		"node_modules/zod/lib/index.js": `module.exports = {};`,
	})
}

func TestResolver_ConditionalExportsPrefersTypes(t *testing.T) {
	tree := zodFixture(t)
	r := NewResolver(tree.Root(), nil)

	exports, err := r.Resolve("zod")
	if err != nil {
		t.Fatal(err)
	}
	if exports == nil {
		t.Fatal("zod should resolve")
	}
	for _, name := range []string{"string", "object", "ZodIssueCode", "ZodString", "infer", "default"} {
		if !exports.Exports[name] {
			t.Errorf("export %q missing; have %v", name, exports.Order)
		}
	}
}

func TestResolver_NamedReexportsSkipTypeOnly(t *testing.T) {
	tree := zodFixture(t)
	exports, _ := NewResolver(tree.Root(), nil).Resolve("zod")

	if !exports.Exports["parse"] {
		t.Error("re-exported parse missing")
	}
	if !exports.Exports["tryParse"] {
		t.Error("aliased re-export should use the alias name")
	}
	if exports.Exports["safeParse"] {
		t.Error("aliased re-export must not expose the original name")
	}
	if exports.Exports["ZodTypeAny"] {
		t.Error("type-only re-export entry should be skipped")
	}
}

func TestResolver_WildcardReexport(t *testing.T) {
	tree := zodFixture(t)
	exports, _ := NewResolver(tree.Root(), nil).Resolve("zod")

	if !exports.Exports["ZodError"] {
		t.Error("wildcard re-export from ./errors not followed")
	}
	if members := exports.Members["ZodError"]; members["format"] != MemberMethod {
		t.Errorf("ZodError member map wrong: %v", members)
	}
}

func TestResolver_MemberKinds(t *testing.T) {
	tree := zodFixture(t)
	exports, _ := NewResolver(tree.Root(), nil).Resolve("zod")

	members := exports.Members["ZodString"]
	if members == nil {
		t.Fatal("ZodString member map missing")
	}
	if members["email"] != MemberMethod || members["min"] != MemberMethod {
		t.Errorf("methods misclassified: %v", members)
	}
	if members["description"] != MemberProperty {
		t.Errorf("property misclassified: %v", members)
	}
}

func TestResolver_Subpath(t *testing.T) {
	tree := zodFixture(t)
	exports, _ := NewResolver(tree.Root(), nil).Resolve("zod/locales")
	if exports == nil || !exports.Exports["en"] {
		t.Fatal("subpath export entry not resolved")
	}
}

func TestResolver_MainSubstitutionAndTypesFallback(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"node_modules/left/package.json": `{ "name": "left", "main": "./dist/mod.js" }`,
		"node_modules/left/dist/mod.d.ts": `export declare function pad(s: string): string;`,
	})
	exports, _ := NewResolver(tree.Root(), nil).Resolve("left")
	if exports == nil || !exports.Exports["pad"] {
		t.Fatal("main→declaration substitution failed")
	}
}

func TestResolver_AtTypesFallback(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"node_modules/lodash/package.json":        `{ "name": "lodash", "main": "./index.js" }`,
		"node_modules/lodash/index.js":            `module.exports = {};`,
		"node_modules/@types/lodash/package.json": `{ "name": "@types/lodash", "types": "./index.d.ts" }`,
		"node_modules/@types/lodash/index.d.ts":   `export declare function chunk(arr: unknown[], size: number): unknown[];`,
	})
	exports, _ := NewResolver(tree.Root(), nil).Resolve("lodash")
	if exports == nil || !exports.Exports["chunk"] {
		t.Fatal("@types fallback not applied")
	}
}

func TestResolver_UnresolvableAndBadManifest(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"node_modules/broken/package.json": `{ not json`,
	})
	r := NewResolver(tree.Root(), nil)
	if exports, err := r.Resolve("broken"); err != nil || exports != nil {
		t.Errorf("bad manifest must be unresolvable, not an error: %v %v", exports, err)
	}
	if exports, err := r.Resolve("ghost"); err != nil || exports != nil {
		t.Errorf("missing package must be unresolvable: %v %v", exports, err)
	}
}

func TestResolver_Memoization(t *testing.T) {
	tree := zodFixture(t)
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	r := NewResolver(tree.Root(), c)

	first, _ := r.Resolve("zod")
	second, _ := r.Resolve("zod")
	if first == nil || second == nil {
		t.Fatal("resolve failed")
	}
	if len(first.Order) != len(second.Order) {
		t.Error("memoized result diverged")
	}
	for i := range first.Order {
		if first.Order[i] != second.Order[i] {
			t.Errorf("export order not stable at %d", i)
		}
	}
}
