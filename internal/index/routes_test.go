package index

import "testing"

func TestRouteIndex_FilesystemConvention(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"src/app/api/users/route.ts": `
export async function GET(req: Request) {}
export async function DELETE(req: Request) {}
`,
		"src/app/(admin)/api/users/[id]/route.ts": `
export async function GET(req: Request) {}
export const PATCH = handler;
`,
		"src/app/api/docs/[...slug]/route.ts": `export function GET() {}`,
		"pages/api/legacy.ts":                 `export default function handler(req, res) {}`,
		"src/app/components/page.tsx":        `export default function Page() {}`,
	})
	idx := BuildRouteIndex(tree)

	r := idx.Match("/api/users")
	if r == nil {
		t.Fatal("/api/users not indexed")
	}
	if !r.Allows("GET") || !r.Allows("DELETE") || r.Allows("POST") {
		t.Errorf("methods wrong: %v", r.MethodOrder)
	}

	// Grouping segment stripped, dynamic segment matches a concrete path.
	r = idx.Match("/api/users/42")
	if r == nil {
		t.Fatal("dynamic segment match failed")
	}
	if !r.Allows("PATCH") {
		t.Errorf("const-exported handler missed: %v", r.MethodOrder)
	}

	// Catch-all matches any depth.
	if idx.Match("/api/docs/a/b/c") == nil {
		t.Error("catch-all match failed")
	}
	if idx.Match("/api/docs") != nil {
		t.Error("catch-all requires at least one segment")
	}

	// Pages-style API file allows any method.
	r = idx.Match("/api/legacy")
	if r == nil || !r.Allows("PUT") {
		t.Error("pages-style route should allow any method")
	}

	// A page component is not a route handler.
	if idx.Match("/components") != nil {
		t.Error("non-handler file indexed as route")
	}
}

func TestRouteIndex_CallBasedAndMounts(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"server/index.ts": `
import usersRouter from "./routes/users";
const app = express();
app.get("/health", (req, res) => res.send("ok"));
app.use("/api/users", usersRouter);
`,
		"server/routes/users.ts": `
const router = Router();
router.get("/", list);
router.post("/", create);
router.route({ method: "DELETE", url: "/:id" });
export default router;
`,
	})
	idx := BuildRouteIndex(tree)

	if r := idx.Match("/health"); r == nil || !r.Allows("GET") {
		t.Error("direct registration missing")
	}
	if r := idx.Match("/api/users"); r == nil || !r.Allows("POST") {
		t.Errorf("mounted route prefix not composed; have %v", idx.Paths())
	}
	if r := idx.Match("/api/users/7"); r == nil || !r.Allows("DELETE") {
		t.Error("route-object registration with param segment missing")
	}
	if idx.Match("/api/users/7") != nil && idx.Match("/api/users/7").Allows("PUT") {
		t.Error("unregistered method allowed")
	}
}

func TestFileTree_SuffixAndSkips(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"src/lib/auth.ts":           "export {}",
		"node_modules/x/index.js":   "ignored",
		".git/config":               "ignored",
		"docs/readme.md":            "# docs",
	})
	if !tree.Contains("src/lib/auth.ts") {
		t.Error("indexed file missing")
	}
	if tree.Contains("node_modules/x/index.js") {
		t.Error("dependency dir should be excluded")
	}
	if got := tree.MatchSuffix("lib/auth.ts"); got != "src/lib/auth.ts" {
		t.Errorf("suffix match = %q", got)
	}
	if tree.MatchSuffix("auth.js") != "" {
		t.Error("suffix match should require a full trailing path")
	}
}

func TestEnvIndex(t *testing.T) {
	tree := writeProject(t, map[string]string{
		".env":         "DATABASE_URL=postgres://x\n# comment\nexport API_KEY=abc\n",
		".env.example": "NEXT_PUBLIC_URL=\n",
	})
	idx := BuildEnvIndex(tree)
	if !idx.Found {
		t.Fatal("env files not found")
	}
	for _, name := range []string{"DATABASE_URL", "API_KEY", "NEXT_PUBLIC_URL"} {
		if !idx.Has(name) {
			t.Errorf("%s missing", name)
		}
	}
	if idx.Has("comment") {
		t.Error("comment parsed as variable")
	}

	empty := BuildEnvIndex(writeProject(t, map[string]string{"a.txt": "x"}))
	if empty.Found {
		t.Error("Found should be false without env files")
	}
}
