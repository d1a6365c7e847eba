package index

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, files map[string]string) *FileTree {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tree, err := BuildFileTree(root)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestBuildSQLSchema_BuilderForm(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"src/db/schema.ts": `
import { pgTable, serial, varchar, timestamp } from "drizzle-orm/pg-core";

export const users = pgTable("users", {
  id: serial("id").primaryKey(),
  name: varchar("name", { length: 255 }).notNull(),
  createdAt: timestamp("created_at"),
  avatar: (t) => t.text(),
});
`,
	})
	schema := BuildSQLSchema(tree)

	table, ok := schema.Resolve("users")
	if !ok {
		t.Fatal("users table missing")
	}
	if !table.FromBuilder || table.VarName != "users" {
		t.Errorf("builder metadata wrong: %+v", table)
	}
	if table.Columns["name"] != "varchar" {
		t.Errorf("expected varchar type tag, got %q", table.Columns["name"])
	}
	if table.Columns["avatar"] != "text" {
		t.Errorf("callback-wrapped column type = %q, want text", table.Columns["avatar"])
	}
	if sqlName, ok := schema.TableForVar("users"); !ok || sqlName != "users" {
		t.Errorf("variable mapping broken: %q", sqlName)
	}
}

func TestBuildSQLSchema_CreateTable(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"migrations/001_init.sql": `
CREATE TABLE IF NOT EXISTS orders (
  id serial PRIMARY KEY,
  total numeric(10, 2) NOT NULL,
  user_id integer,
  PRIMARY KEY (id),
  FOREIGN KEY (user_id) REFERENCES users(id),
  CONSTRAINT positive_total CHECK (total > 0)
);
`,
	})
	schema := BuildSQLSchema(tree)

	table, ok := schema.Resolve("orders")
	if !ok {
		t.Fatal("orders table missing")
	}
	if len(table.ColumnOrder) != 3 {
		t.Fatalf("constraint lines leaked into columns: %v", table.ColumnOrder)
	}
	if table.Columns["total"] != "numeric" {
		t.Errorf("total column type = %q, want numeric", table.Columns["total"])
	}
	if _, ok := table.Columns["user_id"]; !ok {
		t.Error("user_id column missing")
	}
}

func TestBuildSQLSchema_BuilderWinsOnCollision(t *testing.T) {
	tree := writeProject(t, map[string]string{
		"schema.sql": `CREATE TABLE users (id serial, legacy_col text);`,
		"db.ts": `export const users = pgTable("users", {
  id: serial("id"),
  name: varchar("name"),
});`,
	})
	schema := BuildSQLSchema(tree)

	table, _ := schema.Resolve("users")
	if table == nil || !table.FromBuilder {
		t.Fatal("builder table should win on name collision")
	}
	if _, ok := table.Columns["legacy_col"]; ok {
		t.Error("raw SQL columns should not survive the collision")
	}
	if _, ok := table.Columns["name"]; !ok {
		t.Error("builder columns missing")
	}
}
