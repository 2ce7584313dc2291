// Package codegen renders an introspected schema as SQLAlchemy model source.
// Two strategies exist: DeclarativeGenerator emits mapped classes,
// TablesGenerator emits Core Table constructs. Both are pure: the only state
// touched during a run is the run's own ImportCollector.
package codegen

import (
	"fmt"
	"strings"

	"sqlagen/internal/dialect"
	"sqlagen/internal/schema"
)

// Options are the generation suppression flags.
type Options struct {
	NoIndexes     bool
	NoConstraints bool
	NoComments    bool
}

// Generator renders a schema as Python source. Generation is total: it never
// fails for a well-formed schema, however empty.
type Generator interface {
	Generate(s *schema.Schema, opts Options) string
}

// escapeString escapes single quotes for a Python single-quoted literal.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func quoteColumns(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "'" + c + "'"
	}
	return quoted
}

// serverDefault wraps a cleaned default expression in text('...').
func serverDefault(d *dialect.Descriptor, raw string) string {
	return fmt.Sprintf("text('%s')", d.StripDefault(raw))
}

// primaryKeyArg renders a table-level PrimaryKeyConstraint argument.
func primaryKeyArg(c *schema.Constraint) string {
	return fmt.Sprintf("PrimaryKeyConstraint(%s, name='%s')",
		strings.Join(quoteColumns(c.Columns), ", "), c.Name)
}

// foreignKeyArg renders a table-level ForeignKeyConstraint argument.
func foreignKeyArg(c *schema.Constraint) string {
	fk := c.ForeignKeyRef
	refs := make([]string, len(fk.RefColumns))
	for i, col := range fk.RefColumns {
		refs[i] = fmt.Sprintf("'%s.%s'", fk.RefTable, col)
	}
	return fmt.Sprintf("ForeignKeyConstraint([%s], [%s], name='%s')",
		strings.Join(quoteColumns(c.Columns), ", "), strings.Join(refs, ", "), c.Name)
}

// uniqueArg renders a table-level UniqueConstraint argument.
func uniqueArg(c *schema.Constraint) string {
	return fmt.Sprintf("UniqueConstraint(%s)", strings.Join(quoteColumns(c.Columns), ", "))
}

// indexArg renders a table-level Index argument.
func indexArg(idx *schema.Index) string {
	unique := ""
	if idx.IsUnique {
		unique = ", unique=True"
	}
	return fmt.Sprintf("Index('%s', %s%s)",
		idx.Name, strings.Join(quoteColumns(idx.Columns), ", "), unique)
}

// isUniqueBackingIndex reports whether the index merely backs a declared
// unique constraint over the same column list and is therefore redundant.
func isUniqueBackingIndex(idx *schema.Index, constraints []schema.Constraint) bool {
	if !idx.IsUnique {
		return false
	}
	for i := range constraints {
		c := &constraints[i]
		if c.Kind == schema.Unique && equalColumns(c.Columns, idx.Columns) {
			return true
		}
	}
	return false
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
