package index

import "testing"

const sampleSchema = `
datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}

// Post is declared before User, so author's relation-ness
// is only resolvable on the second pass.
model Post {
  id       Int    @id @default(autoincrement())
  title    String
  author   User   @relation(fields: [authorId], references: [id])
  authorId Int
  tags     Tag[]
}

model User {
  id    Int     @id
  name  String
  email String? @unique
  posts Post[]

  @@index([email])
}

model Tag {
  id   Int    @id
  name String
}

enum Role {
  ADMIN
  MEMBER
}
`

func TestParsePrismaSchema_ModelsAndEnums(t *testing.T) {
	schema := ParsePrismaSchema(sampleSchema)

	if len(schema.ModelOrder) != 3 {
		t.Fatalf("expected 3 models, got %v", schema.ModelOrder)
	}
	user := schema.Models["User"]
	if user == nil {
		t.Fatal("User model missing")
	}
	if got := user.FieldOrder; len(got) != 4 {
		t.Errorf("expected 4 User fields, got %v", got)
	}
	if !user.Fields["email"].IsOptional {
		t.Error("email should be optional")
	}
	if roles := schema.Enums["Role"]; len(roles) != 2 || roles[0] != "ADMIN" {
		t.Errorf("unexpected Role values: %v", roles)
	}
}

func TestParsePrismaSchema_RelationsIndependentOfOrder(t *testing.T) {
	schema := ParsePrismaSchema(sampleSchema)

	post := schema.Models["Post"]
	// User is declared after Post; only the second pass can mark this.
	if !post.Fields["author"].IsRelation {
		t.Error("author should be relational despite forward declaration")
	}
	if post.Fields["authorId"].IsRelation {
		t.Error("authorId is a scalar, not a relation")
	}
	if !post.Fields["tags"].IsRelation || !post.Fields["tags"].IsList {
		t.Error("tags should be a relational list")
	}
	user := schema.Models["User"]
	if !user.Fields["posts"].IsRelation {
		t.Error("posts should be relational (backward declaration)")
	}
}

func TestPrismaSchema_AccessorMapping(t *testing.T) {
	schema := ParsePrismaSchema(sampleSchema)

	m, ok := schema.ModelForAccessor("user")
	if !ok || m != "User" {
		t.Errorf("accessor user should map to User, got %q ok=%v", m, ok)
	}
	a, ok := schema.AccessorForModel("Post")
	if !ok || a != "post" {
		t.Errorf("Post should map to accessor post, got %q", a)
	}
	if _, ok := schema.ModelForAccessor("account"); ok {
		t.Error("unknown accessor should not resolve")
	}
	if Accessor("UserProfile") != "userProfile" {
		t.Errorf("Accessor(UserProfile) = %q", Accessor("UserProfile"))
	}
}
