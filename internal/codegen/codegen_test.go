package codegen

import (
	"testing"

	"sqlagen/internal/schema"
)

// Test fixtures shared by the generator tests.

func col(name string, ordinal int, udt string, nullable bool) schema.Column {
	return schema.Column{Name: name, OrdinalPosition: ordinal, UDTName: udt, Nullable: nullable}
}

func withLength(c schema.Column, n int) schema.Column {
	c.CharMaxLength = &n
	return c
}

func withDefault(c schema.Column, expr string) schema.Column {
	c.Default = &expr
	return c
}

func pkConstraint(name string, cols ...string) schema.Constraint {
	return schema.Constraint{Name: name, Kind: schema.PrimaryKey, Columns: cols}
}

func uniqueConstraint(name string, cols ...string) schema.Constraint {
	return schema.Constraint{Name: name, Kind: schema.Unique, Columns: cols}
}

func fkConstraint(name, column, refTable, refColumn string) schema.Constraint {
	return schema.Constraint{
		Name:    name,
		Kind:    schema.ForeignKey,
		Columns: []string{column},
		ForeignKeyRef: &schema.ForeignKeyInfo{
			RefSchema:  "public",
			RefTable:   refTable,
			RefColumns: []string{refColumn},
			UpdateRule: "NO ACTION",
			DeleteRule: "NO ACTION",
		},
	}
}

// blogSchema is a two-table Postgres schema: posts references users, users
// carries nullable columns, a unique email, and a server default.
func blogSchema() *schema.Schema {
	return &schema.Schema{
		Dialect: schema.Postgres,
		Tables: []schema.Table{
			{
				Schema: "public",
				Name:   "posts",
				Kind:   schema.KindTable,
				Columns: []schema.Column{
					col("id", 1, "int8", false),
					col("user_id", 2, "int4", false),
					withLength(col("title", 3, "varchar", false), 200),
					col("body", 4, "text", false),
				},
				Constraints: []schema.Constraint{
					pkConstraint("posts_pkey", "id"),
					fkConstraint("posts_user_id_fkey", "user_id", "users", "id"),
				},
			},
			{
				Schema: "public",
				Name:   "users",
				Kind:   schema.KindTable,
				Columns: []schema.Column{
					col("id", 1, "int4", false),
					withLength(col("name", 2, "varchar", false), 100),
					withLength(col("email", 3, "varchar", false), 255),
					col("bio", 4, "text", true),
					withDefault(col("created_at", 5, "timestamptz", true), "now()"),
				},
				Constraints: []schema.Constraint{
					pkConstraint("users_pkey", "id"),
					uniqueConstraint("users_email_key", "email"),
				},
			},
		},
	}
}

func TestIsUniqueBackingIndex(t *testing.T) {
	constraints := []schema.Constraint{
		uniqueConstraint("users_email_key", "email"),
		uniqueConstraint("users_pair_key", "a", "b"),
	}

	tests := []struct {
		name string
		idx  schema.Index
		want bool
	}{
		{
			name: "unique index matching a unique constraint",
			idx:  schema.Index{Name: "users_email_key", IsUnique: true, Columns: []string{"email"}},
			want: true,
		},
		{
			name: "unique index matching a multi-column constraint",
			idx:  schema.Index{Name: "users_pair_key", IsUnique: true, Columns: []string{"a", "b"}},
			want: true,
		},
		{
			name: "column order matters",
			idx:  schema.Index{Name: "ix_pair", IsUnique: true, Columns: []string{"b", "a"}},
			want: false,
		},
		{
			name: "non-unique index never matches",
			idx:  schema.Index{Name: "ix_email", IsUnique: false, Columns: []string{"email"}},
			want: false,
		},
		{
			name: "different columns",
			idx:  schema.Index{Name: "ix_name", IsUnique: true, Columns: []string{"name"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueBackingIndex(&tt.idx, constraints); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEscapeString(t *testing.T) {
	if got := escapeString("it's here"); got != `it\'s here` {
		t.Errorf("Expected escaped quote, got %q", got)
	}
	if got := escapeString("plain"); got != "plain" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
}
