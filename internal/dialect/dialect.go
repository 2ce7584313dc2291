// Package dialect holds the per-database knowledge the generators consume:
// default schema names, native-type mappings, default-expression cleanup, and
// identity-argument rendering. Everything here is pure lookup over an
// already-introspected column; nothing talks to a database.
package dialect

import (
	"fmt"

	"sqlagen/internal/schema"
)

// TypeInfo describes how a column type renders in the generated source.
type TypeInfo struct {
	// TypeExpr is the full SQLAlchemy type expression, e.g. "String(100)"
	// or "DateTime(timezone=True)".
	TypeExpr string
	// PythonType is the annotation type, e.g. "int" or "datetime.datetime".
	PythonType string
	// Module and Symbol identify the import backing TypeExpr.
	Module string
	Symbol string
	// Element is the import for the element type of ARRAY columns.
	Element *ImportRef
}

// ImportRef is a (module, symbol) import reference.
type ImportRef struct {
	Module string
	Symbol string
}

// Descriptor bundles everything that varies between database dialects.
type Descriptor struct {
	Name          schema.Dialect
	DefaultSchema string

	// MapColumn maps a column's native type to its target representation.
	// It is total: unknown types fall back to an uppercased generic form.
	MapColumn func(col *schema.Column) TypeInfo

	// StripDefault cleans a raw default expression for embedding in the
	// generated raw-expression construct.
	StripDefault func(expr string) string

	// IsSequenceDefault reports whether a default expression is an
	// auto-generated sequence marker that must be suppressed.
	IsSequenceDefault func(expr string) bool

	// IdentityArgs renders the identity-column argument for this dialect.
	IdentityArgs func(id *schema.Identity) string
}

// For returns the descriptor for a dialect tag. Unknown tags resolve to the
// Postgres descriptor so generation stays total.
func For(d schema.Dialect) *Descriptor {
	if d == schema.MSSQL {
		return MSSQL
	}
	return Postgres
}

func simple(typeExpr, pythonType, module string) TypeInfo {
	return TypeInfo{
		TypeExpr:   typeExpr,
		PythonType: pythonType,
		Module:     module,
		Symbol:     typeExpr,
	}
}

func numericExpr(precision, scale *int) string {
	switch {
	case precision != nil && scale != nil:
		return fmt.Sprintf("Numeric(%d, %d)", *precision, *scale)
	case precision != nil:
		return fmt.Sprintf("Numeric(%d)", *precision)
	default:
		return "Numeric"
	}
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
