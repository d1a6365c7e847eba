package index

import "testing"

const generatedTypes = `
export type Json = string | number | boolean | null

export type Database = {
  public: {
    Tables: {
      users: {
        Row: {
          id: string
          email: string
          created_at: string | null
        }
        Insert: {
          id?: string
          email: string
        }
        Update: {
          email?: string
        }
      }
      posts: {
        Row: {
          id: number
          title: string
          author_id: string
        }
      }
    }
    Functions: {
      get_user_posts: {
        Args: { uid: string; limit_count: number }
        Returns: Json
      }
    }
    Enums: {
      post_status: "draft" | "published" | "archived"
    }
  }
}
`

func TestParseDBTypes_Sections(t *testing.T) {
	db := ParseDBTypes(generatedTypes)
	if db == nil {
		t.Fatal("expected parse to succeed")
	}

	if len(db.TableNames) != 2 || db.TableNames[0] != "users" {
		t.Fatalf("tables wrong: %v", db.TableNames)
	}
	if !db.HasColumn("users", "created_at") {
		t.Error("users.created_at missing")
	}
	if db.HasColumn("users", "title") {
		t.Error("Insert/Update or sibling-table columns leaked into Row")
	}
	if cols := db.Columns("posts"); len(cols) != 3 || cols[2] != "author_id" {
		t.Errorf("posts columns wrong: %v", cols)
	}

	fn := db.Functions["get_user_posts"]
	if fn == nil {
		t.Fatal("function missing")
	}
	if len(fn.ArgOrder) != 2 || fn.Args["uid"] != "string" {
		t.Errorf("args wrong: %v / %v", fn.ArgOrder, fn.Args)
	}
	if fn.Returns != "Json" {
		t.Errorf("returns wrong: %q", fn.Returns)
	}

	if vals := db.Enums["post_status"]; len(vals) != 3 || vals[1] != "published" {
		t.Errorf("enum values wrong: %v", vals)
	}
}

func TestLoadDBTypes_StructuralSignature(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"src/types/unrelated.ts": "export interface Props { title: string }",
		"src/types/database.ts":  generatedTypes,
	})
	db := LoadDBTypes(tree)
	if db == nil {
		t.Fatal("generated types file not located")
	}
	if db.File != "src/types/database.ts" {
		t.Errorf("wrong file: %s", db.File)
	}
}

func TestLoadDBTypes_AbsentDomain(t *testing.T) {
	tree := writeProject(t, map[string]string{"README.md": "# x"})
	if db := LoadDBTypes(tree); db != nil {
		t.Error("expected nil when no generated types exist")
	}
}
