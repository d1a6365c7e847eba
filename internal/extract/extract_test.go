package extract

import (
	"testing"

	"github.com/ppiankov/groundcheck/internal/model"
)

func find(refs []model.RawReference, cat model.Category, name, member, method string) *model.RawReference {
	for i := range refs {
		r := &refs[i]
		if r.Category == cat && r.Name == name && r.Member == member && r.Method == method {
			return r
		}
	}
	return nil
}

func TestDetectBinders_NeverHardCoded(t *testing.T) {
	plan := `
const rows = await myCustomClient.user.findMany({ where: { id: 1 } });
logger.info.child({});
`
	binders := DetectBinders(plan, ormMethods, "prisma")
	got := map[string]bool{}
	for _, b := range binders {
		got[b] = true
	}
	if !got["myCustomClient"] {
		t.Error("observed binder name not collected")
	}
	if !got["prisma"] {
		t.Error("conventional default must always be included")
	}
	// An arbitrary object chain must not widen the binder set.
	if got["logger"] {
		t.Error("chain with unknown trailing method treated as binder")
	}
}

func TestORMReferences_FieldInsideOptionsBlock(t *testing.T) {
	plan := "```ts\nconst u = await client.user.findMany({ where: { bogusField: 1 } });\n```"
	refs := ORMReferences(plan)

	if find(refs, model.CategorySchemaModel, "user", "", "") == nil {
		t.Error("model accessor reference missing")
	}
	if find(refs, model.CategorySchemaMethod, "user", "", "findMany") == nil {
		t.Error("client method reference missing")
	}
	if find(refs, model.CategorySchemaField, "user", "bogusField", "where") == nil {
		t.Errorf("field reference missing; have %+v", refs)
	}
}

func TestORMReferences_WhereOperatorsSkipped(t *testing.T) {
	plan := `prisma.post.findFirst({ where: { OR: [{ title: "x" }], published: true } })`
	refs := ORMReferences(plan)
	if find(refs, model.CategorySchemaField, "post", "OR", "where") != nil {
		t.Error("logical operator extracted as field")
	}
	if find(refs, model.CategorySchemaField, "post", "published", "where") == nil {
		t.Error("top-level where field missing")
	}
}

func TestORMReferences_UnanchoredBlockDropped(t *testing.T) {
	// The blank line severs the where block from the earlier query.
	plan := "prisma.user.findMany(\n\n{ where: { name: 'x' } })"
	refs := ORMReferences(plan)
	if find(refs, model.CategorySchemaField, "user", "name", "where") != nil {
		t.Error("anchor from before a blank-line boundary was attributed")
	}
}

func TestFileReferences_CreationHints(t *testing.T) {
	plan := `
Update src/lib/auth.ts to export the session helper.

- Create src/lib/session.ts with the new store.
- Modify src/app/page.tsx (new) variant.

## New files

- src/hooks/useSession.ts

## Testing

- src/lib/auth.test.ts
`
	refs := FileReferences(plan)

	cases := []struct {
		path string
		hint bool
	}{
		{"src/lib/auth.ts", false},
		{"src/lib/session.ts", true},
		{"src/app/page.tsx", true},
		{"src/hooks/useSession.ts", true},
		{"src/lib/auth.test.ts", false},
	}
	for _, c := range cases {
		r := find(refs, model.CategoryFile, c.path, "", "")
		if r == nil {
			t.Errorf("%s not extracted", c.path)
			continue
		}
		if r.CreationHint != c.hint {
			t.Errorf("%s creation hint = %v, want %v", c.path, r.CreationHint, c.hint)
		}
	}
}

func TestFileReferences_SkipsURLs(t *testing.T) {
	refs := FileReferences("see https://example.com/docs/guide.html and src/a.ts")
	if find(refs, model.CategoryFile, "example.com/docs/guide.html", "", "") != nil {
		t.Error("URL tail extracted as a project path")
	}
}

func TestSQLReferences_BuilderAndComparators(t *testing.T) {
	plan := "db.select().from(users).where(eq(users.age, 21)).orderBy(desc(users.createdAt))"
	refs := SQLReferences(plan)
	if find(refs, model.CategoryTable, "users", "", "") == nil {
		t.Error("builder table reference missing")
	}
	if find(refs, model.CategoryColumn, "users", "age", "") == nil {
		t.Error("comparator column reference missing")
	}
	if find(refs, model.CategoryColumn, "users", "createdAt", "") == nil {
		t.Error("ordering column reference missing")
	}
}

func TestSQLReferences_RawSQLNearestTable(t *testing.T) {
	plan := "SELECT * FROM orders WHERE status = 'open';\n\nSELECT * FROM users WHERE email = $1;"
	refs := SQLReferences(plan)
	if find(refs, model.CategoryColumn, "orders", "status", "") == nil {
		t.Error("first statement column not attributed to its table")
	}
	if find(refs, model.CategoryColumn, "users", "email", "") == nil {
		t.Error("second statement column not attributed to its table")
	}
	if find(refs, model.CategoryColumn, "orders", "email", "") != nil {
		t.Error("column attributed across a statement boundary")
	}
}

func TestDBClientReferences(t *testing.T) {
	plan := `
const { data } = await supabase.from('profiles').select('id, username').eq('active', true);
await supabase.rpc('match_documents', { query });
type S = Database["public"]["Enums"]["subscription_status"];
`
	refs := DBClientReferences(plan)
	if find(refs, model.CategoryTable, "profiles", "", "") == nil {
		t.Error("from() table missing")
	}
	for _, col := range []string{"id", "username", "active"} {
		if find(refs, model.CategoryColumn, "profiles", col, "") == nil {
			t.Errorf("column %s not attributed to profiles", col)
		}
	}
	if find(refs, model.CategoryDBFunction, "match_documents", "", "") == nil {
		t.Error("rpc function missing")
	}
	if find(refs, model.CategoryDBEnum, "subscription_status", "", "") == nil {
		t.Error("enum access missing")
	}
}

func TestDBClientReferences_RenamedBinder(t *testing.T) {
	plan := `const sb = createClient(); await sb.from('users').select('*'); sb.rpc('fn_x');`
	refs := DBClientReferences(plan)
	if find(refs, model.CategoryTable, "users", "", "") == nil {
		t.Error("renamed client binder not detected")
	}
}

func TestPackageReferences(t *testing.T) {
	plan := `
import { z } from "zod";
import dayjs from "dayjs";
import * as R from "ramda";
import { useState as useS, type FC } from "react";
import "./globals.css";
const _ = require("lodash");

const now = dayjs.utc();
const dup = R.uniq(list);
const schema = z.isEmail();
`
	refs := PackageReferences(plan)

	for _, pkg := range []string{"zod", "dayjs", "ramda", "react", "lodash"} {
		if find(refs, model.CategoryPackage, pkg, "", "") == nil {
			t.Errorf("package %s missing", pkg)
		}
	}
	if find(refs, model.CategoryPackage, "./globals.css", "", "") != nil {
		t.Error("relative import extracted as a package")
	}
	// Named import references the original export name, not the alias.
	if find(refs, model.CategoryPackageMember, "react", "useState", "") == nil {
		t.Error("aliased named import should reference the original name")
	}
	if find(refs, model.CategoryPackageMember, "dayjs", "utc", "") == nil {
		t.Error("default-binding member call missing")
	}
	if find(refs, model.CategoryPackageMember, "ramda", "uniq", "") == nil {
		t.Error("namespace-binding member call missing")
	}
	if find(refs, model.CategoryPackageMember, "zod", "isEmail", "") == nil {
		t.Error("destructured-binding member call missing")
	}
}

func TestTypeReferences(t *testing.T) {
	plan := `
const profile: UserProfile = { userId: "1", nickname: "a" };
function f(x: string): Promise<void> {}
class Admin extends BaseUser implements Auditable {}
const v = data as SessionState;
`
	refs := TypeReferences(plan)
	for _, name := range []string{"UserProfile", "BaseUser", "Auditable", "SessionState"} {
		if find(refs, model.CategoryType, name, "", "") == nil {
			t.Errorf("type %s missing", name)
		}
	}
	if find(refs, model.CategoryType, "Promise", "", "") != nil {
		t.Error("builtin extracted as project type")
	}
	for _, member := range []string{"userId", "nickname"} {
		if find(refs, model.CategoryTypeMember, "UserProfile", member, "") == nil {
			t.Errorf("annotated-literal member %s missing", member)
		}
	}
}

func TestRouteReferences(t *testing.T) {
	plan := `
await fetch("/api/users/42", { method: "DELETE" });
await fetch("/api/health");
const r = await api.post("/api/orders", body);
The endpoint GET /api/users returns the list.
app.get("/internal", handler);
`
	refs := RouteReferences(plan)
	if find(refs, model.CategoryRouteMethod, "/api/users/42", "", "DELETE") == nil {
		t.Error("fetch method option missing")
	}
	if find(refs, model.CategoryRoute, "/api/health", "", "") == nil {
		t.Error("plain fetch path missing")
	}
	if find(refs, model.CategoryRouteMethod, "/api/orders", "", "POST") == nil {
		t.Error("client verb call missing")
	}
	if find(refs, model.CategoryRouteMethod, "/api/users", "", "GET") == nil {
		t.Error("prose method+path missing")
	}
	if find(refs, model.CategoryRoute, "/internal", "", "") != nil {
		t.Error("route registration extracted as a request")
	}
}

func TestEnvReferences(t *testing.T) {
	plan := `
const url = process.env.DATABASE_URL;
const key = process.env["API_KEY"];
const mode = import.meta.env.VITE_MODE;
const tok = Deno.env.get("DENO_TOKEN");
`
	refs := EnvReferences(plan)
	for _, name := range []string{"DATABASE_URL", "API_KEY", "VITE_MODE", "DENO_TOKEN"} {
		if find(refs, model.CategoryEnvVar, name, "", "") == nil {
			t.Errorf("env var %s missing", name)
		}
	}
}

func TestDedupe(t *testing.T) {
	plan := "fetch('/api/a'); fetch('/api/a');"
	refs := RouteReferences(plan)
	count := 0
	for _, r := range refs {
		if r.Category == model.CategoryRoute && r.Name == "/api/a" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate reference survived: %d", count)
	}
}
