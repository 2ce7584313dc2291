package codegen

import (
	"fmt"
	"strings"

	"sqlagen/internal/dialect"
	"sqlagen/internal/schema"
)

// DeclarativeGenerator renders one mapped class per table. Tables without a
// primary key cannot be mapped as classes and fall back to plain Table
// constructs bound to the run's metadata container. The container itself is
// chosen once per run: a DeclarativeBase subclass when at least one table has
// a primary key, a bare MetaData otherwise.
type DeclarativeGenerator struct{}

// stdlibNeeds tracks which typing/stdlib imports the annotations require.
type stdlibNeeds struct {
	optional bool
	datetime bool
	decimal  bool
	uuid     bool
}

// Generate renders the schema in the class-mapped style.
func (DeclarativeGenerator) Generate(s *schema.Schema, opts Options) string {
	d := dialect.For(s.Dialect)
	imports := NewImportCollector()
	tables := schema.SortByDependency(s.Tables)

	anyPK := false
	for i := range tables {
		if tables[i].PrimaryKey() != nil {
			anyPK = true
			break
		}
	}

	metadataRef := "metadata"
	if anyPK {
		metadataRef = "Base.metadata"
		imports.Add("sqlalchemy.orm", "DeclarativeBase")
		imports.Add("sqlalchemy.orm", "Mapped")
		imports.Add("sqlalchemy.orm", "mapped_column")
	} else {
		imports.Add("sqlalchemy", "MetaData")
	}

	var needs stdlibNeeds
	blocks := make([]string, 0, len(tables))
	for i := range tables {
		t := &tables[i]
		if t.PrimaryKey() == nil {
			imports.Add("sqlalchemy", "Table")
			imports.Add("sqlalchemy", "Column")
			blocks = append(blocks, renderTableBlock(t, metadataRef, d, opts, imports))
			continue
		}
		blocks = append(blocks, renderClassBlock(t, d, opts, imports, &needs))
	}

	if needs.optional {
		imports.Add("typing", "Optional")
	}
	if needs.datetime {
		imports.AddBare("datetime")
	}
	if needs.decimal {
		imports.AddBare("decimal")
	}
	if needs.uuid {
		imports.AddBare("uuid")
	}

	var b strings.Builder
	b.WriteString(imports.Render())
	if anyPK {
		b.WriteString("\n\nclass Base(DeclarativeBase):\n    pass")
	} else {
		b.WriteString("\n\nmetadata = MetaData()")
	}
	for _, block := range blocks {
		b.WriteString("\n\n\n")
		b.WriteString(block)
	}
	b.WriteString("\n")
	return b.String()
}

// renderClassBlock renders one mapped class. Fields are reordered into three
// buckets, each preserving ordinal order: primary-key columns, non-nullable
// columns, nullable columns.
func renderClassBlock(t *schema.Table, d *dialect.Descriptor, opts Options, imports *ImportCollector, needs *stdlibNeeds) string {
	lines := []string{
		fmt.Sprintf("class %s(Base):", ClassName(t.Name)),
		fmt.Sprintf("    __tablename__ = '%s'", t.Name),
	}

	if args := classTableArgs(t, d, opts, imports); len(args) > 0 {
		entries := make([]string, len(args))
		for i, arg := range args {
			entries[i] = "        " + arg + ","
		}
		lines = append(lines, fmt.Sprintf("    __table_args__ = (\n%s\n    )", strings.Join(entries, "\n")))
	}

	lines = append(lines, "")

	type fieldLine struct {
		pk       bool
		nullable bool
		line     string
	}
	fields := make([]fieldLine, 0, len(t.Columns))

	for i := range t.Columns {
		col := &t.Columns[i]
		mapped := d.MapColumn(col)
		imports.Add(mapped.Module, mapped.Symbol)
		if mapped.Element != nil {
			imports.Add(mapped.Element.Module, mapped.Element.Symbol)
		}

		switch {
		case strings.HasPrefix(mapped.PythonType, "datetime."):
			needs.datetime = true
		case strings.HasPrefix(mapped.PythonType, "decimal."):
			needs.decimal = true
		case strings.HasPrefix(mapped.PythonType, "uuid."):
			needs.uuid = true
		}

		isPK := t.IsPrimaryKeyColumn(col.Name)
		annotation := mapped.PythonType
		if col.Nullable && !isPK {
			needs.optional = true
			annotation = fmt.Sprintf("Optional[%s]", annotation)
		}

		args := []string{mapped.TypeExpr}
		if !opts.NoConstraints {
			if fk := t.ForeignKeyFor(col.Name); fk != nil && fk.ForeignKeyRef != nil {
				imports.Add("sqlalchemy", "ForeignKey")
				args = append(args, fmt.Sprintf("ForeignKey('%s.%s')",
					fk.ForeignKeyRef.RefTable, fk.ForeignKeyRef.RefColumns[0]))
			}
		}
		if col.Identity != nil {
			imports.Add("sqlalchemy", "Identity")
			args = append(args, d.IdentityArgs(col.Identity))
		}
		if !col.Nullable && !isPK {
			args = append(args, "nullable=False")
		}
		if isPK {
			args = append(args, "primary_key=True")
		}
		if !opts.NoConstraints && t.HasUniqueConstraint(col.Name) {
			args = append(args, "unique=True")
		}
		if col.Default != nil && !d.IsSequenceDefault(*col.Default) {
			imports.Add("sqlalchemy", "text")
			args = append(args, "server_default="+serverDefault(d, *col.Default))
		}
		if !opts.NoComments && col.Comment != "" {
			args = append(args, fmt.Sprintf("comment='%s'", escapeString(col.Comment)))
		}

		fields = append(fields, fieldLine{
			pk:       isPK,
			nullable: col.Nullable,
			line: fmt.Sprintf("    %s: Mapped[%s] = mapped_column(%s)",
				col.Name, annotation, strings.Join(args, ", ")),
		})
	}

	for _, f := range fields {
		if f.pk {
			lines = append(lines, f.line)
		}
	}
	for _, f := range fields {
		if !f.pk && !f.nullable {
			lines = append(lines, f.line)
		}
	}
	for _, f := range fields {
		if !f.pk && f.nullable {
			lines = append(lines, f.line)
		}
	}

	return strings.Join(lines, "\n")
}

// classTableArgs assembles the __table_args__ entries in the fixed order
// primary key, multi-column foreign keys, multi-column unique constraints,
// indexes, comment, schema override. Single-column foreign keys and unique
// constraints are rendered at column level instead.
func classTableArgs(t *schema.Table, d *dialect.Descriptor, opts Options, imports *ImportCollector) []string {
	var args []string

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
			if c.Kind == schema.ForeignKey && c.ForeignKeyRef != nil && len(c.Columns) > 1 {
				imports.Add("sqlalchemy", "ForeignKeyConstraint")
				args = append(args, foreignKeyArg(c))
			}
		}
		for i := range t.Constraints {
			c := &t.Constraints[i]
			if c.Kind == schema.Unique && len(c.Columns) > 1 {
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
		args = append(args, fmt.Sprintf("{'comment': '%s'}", escapeString(t.Comment)))
	}
	if t.Schema != d.DefaultSchema {
		args = append(args, fmt.Sprintf("{'schema': '%s'}", t.Schema))
	}

	return args
}
