package codegen

import (
	"fmt"
	"strings"

	"sqlagen/internal/dialect"
	"sqlagen/internal/schema"
)

// TablesGenerator renders every table as a Core Table construct bound to one
// shared MetaData. All constraints, including single-column unique and
// foreign keys, are rendered as table-level constraint objects.
type TablesGenerator struct{}

// Generate renders the schema in the plain-table style.
func (TablesGenerator) Generate(s *schema.Schema, opts Options) string {
	d := dialect.For(s.Dialect)
	imports := NewImportCollector()
	imports.Add("sqlalchemy", "MetaData")
	imports.Add("sqlalchemy", "Table")
	imports.Add("sqlalchemy", "Column")

	tables := schema.SortByDependency(s.Tables)
	blocks := make([]string, 0, len(tables))
	for i := range tables {
		blocks = append(blocks, renderTableBlock(&tables[i], "metadata", d, opts, imports))
	}

	var b strings.Builder
	b.WriteString(imports.Render())
	b.WriteString("\n\nmetadata = MetaData()\n")
	for _, block := range blocks {
		b.WriteString("\n\n")
		b.WriteString(block)
	}
	b.WriteString("\n")
	return b.String()
}

// renderTableBlock renders one Table construct bound to metadataRef. Columns
// keep their ordinal order; table-level arguments follow the fixed order
// primary key, foreign keys, unique constraints, indexes, comment, schema.
func renderTableBlock(t *schema.Table, metadataRef string, d *dialect.Descriptor, opts Options, imports *ImportCollector) string {
	var args []string

	for i := range t.Columns {
		col := &t.Columns[i]
		mapped := d.MapColumn(col)
		imports.Add(mapped.Module, mapped.Symbol)
		if mapped.Element != nil {
			imports.Add(mapped.Element.Module, mapped.Element.Symbol)
		}

		colArgs := []string{"'" + col.Name + "'", mapped.TypeExpr}
		if col.Identity != nil {
			imports.Add("sqlalchemy", "Identity")
			colArgs = append(colArgs, d.IdentityArgs(col.Identity))
		}
		if t.IsPrimaryKeyColumn(col.Name) {
			colArgs = append(colArgs, "primary_key=True")
		} else if !col.Nullable {
			colArgs = append(colArgs, "nullable=False")
		}
		if col.Default != nil && !d.IsSequenceDefault(*col.Default) {
			imports.Add("sqlalchemy", "text")
			colArgs = append(colArgs, "server_default="+serverDefault(d, *col.Default))
		}
		if !opts.NoComments && col.Comment != "" {
			colArgs = append(colArgs, fmt.Sprintf("comment='%s'", escapeString(col.Comment)))
		}
		args = append(args, fmt.Sprintf("Column(%s)", strings.Join(colArgs, ", ")))
	}

	if !opts.NoConstraints {
		for i := range t.Constraints {
			c := &t.Constraints[i]
			if c.Kind == schema.PrimaryKey {
				imports.Add("sqlalchemy", "PrimaryKeyConstraint")
				args = append(args, primaryKeyArg(c))
			}
		}
		for i := range t.Constraints {
			c := &t.Constraints[i]
			if c.Kind == schema.ForeignKey && c.ForeignKeyRef != nil {
				imports.Add("sqlalchemy", "ForeignKeyConstraint")
				args = append(args, foreignKeyArg(c))
			}
		}
		for i := range t.Constraints {
			c := &t.Constraints[i]
			if c.Kind == schema.Unique {
				imports.Add("sqlalchemy", "UniqueConstraint")
				args = append(args, uniqueArg(c))
			}
		}
	}

	if !opts.NoIndexes {
		for i := range t.Indexes {
			idx := &t.Indexes[i]
			if isUniqueBackingIndex(idx, t.Constraints) {
				continue
			}
			imports.Add("sqlalchemy", "Index")
			args = append(args, indexArg(idx))
		}
	}

	if !opts.NoComments && t.Comment != "" {
		args = append(args, fmt.Sprintf("comment='%s'", escapeString(t.Comment)))
	}
	if t.Schema != d.DefaultSchema {
		args = append(args, fmt.Sprintf("schema='%s'", t.Schema))
	}

	lines := []string{
		TableVarName(t.Name) + " = Table(",
		fmt.Sprintf("    '%s', %s,", t.Name, metadataRef),
	}
	for i, arg := range args {
		comma := ","
		if i == len(args)-1 {
			comma = ""
		}
		lines = append(lines, "    "+arg+comma)
	}
	lines = append(lines, ")")
	return strings.Join(lines, "\n")
}
