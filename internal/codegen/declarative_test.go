package codegen

import (
	"strings"
	"testing"

	"sqlagen/internal/schema"
)

func TestDeclarativeGeneratorGolden(t *testing.T) {
	want := strings.Join([]string{
		"from typing import Optional",
		"import datetime",
		"",
		"from sqlalchemy import BigInteger, DateTime, ForeignKey, Integer, PrimaryKeyConstraint, String, Text, text",
		"from sqlalchemy.orm import DeclarativeBase, Mapped, mapped_column",
		"",
		"class Base(DeclarativeBase):",
		"    pass",
		"",
		"",
		"class Users(Base):",
		"    __tablename__ = 'users'",
		"    __table_args__ = (",
		"        PrimaryKeyConstraint('id', name='users_pkey'),",
		"    )",
		"",
		"    id: Mapped[int] = mapped_column(Integer, primary_key=True)",
		"    name: Mapped[str] = mapped_column(String(100), nullable=False)",
		"    email: Mapped[str] = mapped_column(String(255), nullable=False, unique=True)",
		"    bio: Mapped[Optional[str]] = mapped_column(Text)",
		"    created_at: Mapped[Optional[datetime.datetime]] = mapped_column(DateTime(timezone=True), server_default=text('now()'))",
		"",
		"",
		"class Posts(Base):",
		"    __tablename__ = 'posts'",
		"    __table_args__ = (",
		"        PrimaryKeyConstraint('id', name='posts_pkey'),",
		"    )",
		"",
		"    id: Mapped[int] = mapped_column(BigInteger, primary_key=True)",
		"    user_id: Mapped[int] = mapped_column(Integer, ForeignKey('users.id'), nullable=False)",
		"    title: Mapped[str] = mapped_column(String(200), nullable=False)",
		"    body: Mapped[str] = mapped_column(Text, nullable=False)",
		"",
	}, "\n")

	got := DeclarativeGenerator{}.Generate(blogSchema(), Options{})
	if got != want {
		t.Errorf("Output mismatch.\nExpected:\n%s\nGot:\n%s", want, got)
	}
}

func TestDeclarativeGeneratorIdempotent(t *testing.T) {
	s := blogSchema()
	first := DeclarativeGenerator{}.Generate(s, Options{})
	second := DeclarativeGenerator{}.Generate(s, Options{})
	if first != second {
		t.Error("Generating twice from the same schema produced different output")
	}
}

func TestDeclarativeGeneratorColumnBuckets(t *testing.T) {
	s := &schema.Schema{
		Dialect: schema.Postgres,
		Tables: []schema.Table{{
			Schema: "public",
			Name:   "items",
			Columns: []schema.Column{
				col("note", 1, "text", true),
				col("amount", 2, "int4", false),
				col("id", 3, "int4", false),
				col("label", 4, "text", true),
				col("qty", 5, "int4", false),
			},
			Constraints: []schema.Constraint{pkConstraint("items_pkey", "id")},
		}},
	}

	out := DeclarativeGenerator{}.Generate(s, Options{})

	var fieldOrder []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if idx := strings.Index(trimmed, ": Mapped["); idx > 0 {
			fieldOrder = append(fieldOrder, trimmed[:idx])
		}
	}

	want := []string{"id", "amount", "qty", "note", "label"}
	if len(fieldOrder) != len(want) {
		t.Fatalf("Expected %d fields, got %d (%v)", len(want), len(fieldOrder), fieldOrder)
	}
	for i := range want {
		if fieldOrder[i] != want[i] {
			t.Errorf("Field %d: expected %s, got %s (full order %v)", i, want[i], fieldOrder[i], fieldOrder)
		}
	}
}

func TestDeclarativeGeneratorFallbackTable(t *testing.T) {
	s := blogSchema()
	s.Tables = append(s.Tables, schema.Table{
		Schema: "public",
		Name:   "logs",
		Kind:   schema.KindTable,
		Columns: []schema.Column{
			col("message", 1, "text", false),
			col("logged_at", 2, "timestamp", true),
		},
	})

	out := DeclarativeGenerator{}.Generate(s, Options{})

	if !strings.Contains(out, "t_logs = Table(") {
		t.Error("Expected a Table fallback for the primary-key-less table")
	}
	if !strings.Contains(out, "    'logs', Base.metadata,") {
		t.Error("Expected the fallback table to bind to Base.metadata")
	}
	if !strings.Contains(out, "class Users(Base):") {
		t.Error("Expected tables with primary keys to stay class-mapped")
	}
	// Fallback tables keep ordinal column order.
	if strings.Index(out, "Column('message', Text, nullable=False)") > strings.Index(out, "Column('logged_at', DateTime)") {
		t.Error("Expected fallback table columns in ordinal order")
	}
}

func TestDeclarativeGeneratorNoPrimaryKeysAnywhere(t *testing.T) {
	s := &schema.Schema{
		Dialect: schema.Postgres,
		Tables: []schema.Table{{
			Schema:  "public",
			Name:    "events",
			Columns: []schema.Column{col("payload", 1, "jsonb", true)},
		}},
	}

	out := DeclarativeGenerator{}.Generate(s, Options{})

	if !strings.Contains(out, "metadata = MetaData()") {
		t.Error("Expected a standalone MetaData container when no table has a primary key")
	}
	if strings.Contains(out, "DeclarativeBase") {
		t.Error("Expected no declarative base in a run without primary keys")
	}
	if !strings.Contains(out, "    'events', metadata,") {
		t.Error("Expected the table to bind to the standalone metadata")
	}
}

func TestDeclarativeGeneratorSuppressionFlags(t *testing.T) {
	s := blogSchema()
	s.Tables[1].Comment = "registered users"
	s.Tables[1].Columns[1].Comment = "display name"
	s.Tables[1].Indexes = []schema.Index{
		{Name: "ix_users_name", IsUnique: false, Columns: []string{"name"}},
	}

	t.Run("noconstraints", func(t *testing.T) {
		out := DeclarativeGenerator{}.Generate(s, Options{NoConstraints: true})
		for _, construct := range []string{"PrimaryKeyConstraint(", "ForeignKey(", "ForeignKeyConstraint(", "UniqueConstraint(", "unique=True"} {
			if strings.Contains(out, construct) {
				t.Errorf("Expected no %s with constraints suppressed", construct)
			}
		}
		// primary_key=True is a column property, not a constraint object.
		if !strings.Contains(out, "primary_key=True") {
			t.Error("Expected primary_key=True to survive constraint suppression")
		}
	})

	t.Run("noindexes", func(t *testing.T) {
		out := DeclarativeGenerator{}.Generate(s, Options{NoIndexes: true})
		if strings.Contains(out, "Index(") {
			t.Error("Expected no Index objects with indexes suppressed")
		}
	})

	t.Run("nocomments", func(t *testing.T) {
		out := DeclarativeGenerator{}.Generate(s, Options{NoComments: true})
		if strings.Contains(out, "comment='") {
			t.Error("Expected no column comment arguments with comments suppressed")
		}
		if strings.Contains(out, "{'comment':") {
			t.Error("Expected no table comment entries with comments suppressed")
		}
	})

	t.Run("default keeps everything", func(t *testing.T) {
		out := DeclarativeGenerator{}.Generate(s, Options{})
		if !strings.Contains(out, "Index('ix_users_name', 'name'),") {
			t.Error("Expected the index to render by default")
		}
		if !strings.Contains(out, "{'comment': 'registered users'},") {
			t.Error("Expected the table comment entry")
		}
		if !strings.Contains(out, "comment='display name'") {
			t.Error("Expected the column comment argument")
		}
	})
}

func TestDeclarativeGeneratorMultiColumnConstraints(t *testing.T) {
	s := &schema.Schema{
		Dialect: schema.Postgres,
		Tables: []schema.Table{{
			Schema: "public",
			Name:   "memberships",
			Columns: []schema.Column{
				col("user_id", 1, "int4", false),
				col("team_id", 2, "int4", false),
			},
			Constraints: []schema.Constraint{
				pkConstraint("memberships_pkey", "user_id", "team_id"),
				uniqueConstraint("memberships_pair_key", "user_id", "team_id"),
			},
			Indexes: []schema.Index{
				{Name: "memberships_pair_key", IsUnique: true, Columns: []string{"user_id", "team_id"}},
			},
		}},
	}

	out := DeclarativeGenerator{}.Generate(s, Options{})

	if !strings.Contains(out, "PrimaryKeyConstraint('user_id', 'team_id', name='memberships_pkey'),") {
		t.Error("Expected a composite primary key constraint")
	}
	if !strings.Contains(out, "UniqueConstraint('user_id', 'team_id'),") {
		t.Error("Expected the multi-column unique constraint at table level")
	}
	if strings.Contains(out, "Index(") {
		t.Error("Expected the unique-backing index to be skipped")
	}
	if strings.Contains(out, "unique=True") {
		t.Error("Expected no column-level unique flag for a multi-column constraint")
	}
}

func TestDeclarativeGeneratorSchemaOverride(t *testing.T) {
	s := blogSchema()
	s.Tables[1].Schema = "auth"

	out := DeclarativeGenerator{}.Generate(s, Options{})
	if !strings.Contains(out, "{'schema': 'auth'},") {
		t.Error("Expected a schema override entry for a non-default schema")
	}
	if strings.Contains(out, "{'schema': 'public'}") {
		t.Error("Expected no schema entry for the default schema")
	}
}

func TestDeclarativeGeneratorIdentity(t *testing.T) {
	s := blogSchema()
	s.Tables[1].Columns[0].IsIdentity = true
	s.Tables[1].Columns[0].Identity = &schema.Identity{
		Start: 1, Increment: 1, MinValue: 1, MaxValue: 2147483647, Cache: 1,
	}

	out := DeclarativeGenerator{}.Generate(s, Options{})
	want := "id: Mapped[int] = mapped_column(Integer, Identity(start=1, increment=1, minvalue=1, maxvalue=2147483647, cycle=False, cache=1), primary_key=True)"
	if !strings.Contains(out, want) {
		t.Errorf("Expected identity arguments in column line.\nWant fragment: %s\nGot:\n%s", want, out)
	}
	if !strings.Contains(out, "from sqlalchemy import") || !strings.Contains(out, "Identity") {
		t.Error("Expected an Identity import")
	}
}

func TestDeclarativeGeneratorSequenceDefaultSuppressed(t *testing.T) {
	s := blogSchema()
	s.Tables[1].Columns[0] = withDefault(s.Tables[1].Columns[0], "nextval('users_id_seq'::regclass)")

	out := DeclarativeGenerator{}.Generate(s, Options{})
	if strings.Contains(out, "nextval") {
		t.Error("Expected sequence defaults to be suppressed")
	}
}

func TestDeclarativeGeneratorEmptySchema(t *testing.T) {
	s := &schema.Schema{Dialect: schema.Postgres}
	out := DeclarativeGenerator{}.Generate(s, Options{})
	if !strings.Contains(out, "metadata = MetaData()") {
		t.Error("Expected an empty schema to render a bare metadata container")
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Expected output to end with a newline")
	}
}
