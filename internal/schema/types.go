package schema

// Dialect identifies the database family a schema was introspected from.
type Dialect string

// Supported dialects.
const (
	Postgres Dialect = "postgres"
	MSSQL    Dialect = "mssql"
)

// Schema represents a complete introspected database schema
type Schema struct {
	Dialect Dialect
	Tables  []Table
}

// TableKind distinguishes base tables from views
type TableKind string

// Table kinds.
const (
	KindTable TableKind = "table"
	KindView  TableKind = "view"
)

// Table represents a database table or view
type Table struct {
	Schema      string
	Name        string
	Kind        TableKind
	Comment     string
	Columns     []Column
	Constraints []Constraint
	Indexes     []Index
}

// Column represents a table column. Columns are kept in ascending
// ordinal-position order as introspected.
type Column struct {
	Name             string
	OrdinalPosition  int
	Nullable         bool
	DataType         string
	UDTName          string
	CharMaxLength    *int
	NumericPrecision *int
	NumericScale     *int
	Default          *string
	IsIdentity       bool
	Identity         *Identity
	Comment          string
	Collation        string
}

// Identity holds the sequence parameters backing an identity column
type Identity struct {
	Start     int64
	Increment int64
	MinValue  int64
	MaxValue  int64
	Cycle     bool
	Cache     int64
}

// ConstraintKind is the kind of a table constraint
type ConstraintKind string

// Constraint kinds.
const (
	PrimaryKey ConstraintKind = "primary-key"
	ForeignKey ConstraintKind = "foreign-key"
	Unique     ConstraintKind = "unique"
)

// Constraint represents a primary key, foreign key, or unique constraint.
// ForeignKeyRef is set iff Kind is ForeignKey.
type Constraint struct {
	Name          string
	Kind          ConstraintKind
	Columns       []string
	ForeignKeyRef *ForeignKeyInfo
}

// ForeignKeyInfo describes the referenced side of a foreign key constraint
type ForeignKeyInfo struct {
	RefSchema  string
	RefTable   string
	RefColumns []string
	UpdateRule string
	DeleteRule string
}

// Index represents a database index
type Index struct {
	Name     string
	IsUnique bool
	Columns  []string
}

// PrimaryKey returns the table's primary key constraint, or nil if it has none.
func (t *Table) PrimaryKey() *Constraint {
	for i := range t.Constraints {
		if t.Constraints[i].Kind == PrimaryKey {
			return &t.Constraints[i]
		}
	}
	return nil
}

// IsPrimaryKeyColumn reports whether the named column is part of the primary key.
func (t *Table) IsPrimaryKeyColumn(name string) bool {
	pk := t.PrimaryKey()
	if pk == nil {
		return false
	}
	for _, col := range pk.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// HasUniqueConstraint reports whether the named column carries a
// single-column unique constraint.
func (t *Table) HasUniqueConstraint(name string) bool {
	for _, c := range t.Constraints {
		if c.Kind == Unique && len(c.Columns) == 1 && c.Columns[0] == name {
			return true
		}
	}
	return false
}

// ForeignKeyFor returns the single-column foreign key constraint on the named
// column, or nil if there is none. Multi-column foreign keys are not matched.
func (t *Table) ForeignKeyFor(name string) *Constraint {
	for i := range t.Constraints {
		c := &t.Constraints[i]
		if c.Kind == ForeignKey && len(c.Columns) == 1 && c.Columns[0] == name {
			return c
		}
	}
	return nil
}
