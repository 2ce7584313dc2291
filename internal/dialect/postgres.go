package dialect

import (
	"fmt"
	"strings"

	"sqlagen/internal/schema"
)

// Postgres is the PostgreSQL dialect descriptor.
var Postgres = &Descriptor{
	Name:          schema.Postgres,
	DefaultSchema: "public",
	MapColumn:     pgMapColumn,
	StripDefault:  stripPgTypecast,
	IsSequenceDefault: func(expr string) bool {
		return strings.HasPrefix(expr, "nextval(")
	},
	IdentityArgs: func(id *schema.Identity) string {
		return fmt.Sprintf("Identity(start=%d, increment=%d, minvalue=%d, maxvalue=%d, cycle=%s, cache=%d)",
			id.Start, id.Increment, id.MinValue, id.MaxValue, pyBool(id.Cycle), id.Cache)
	},
}

func pgMapColumn(col *schema.Column) TypeInfo {
	// Array types carry a leading underscore on the element's udt name.
	if element, ok := strings.CutPrefix(col.UDTName, "_"); ok {
		mapped := pgScalar(element, col)
		return TypeInfo{
			TypeExpr:   fmt.Sprintf("ARRAY(%s)", mapped.TypeExpr),
			PythonType: "list",
			Module:     "sqlalchemy",
			Symbol:     "ARRAY",
			Element:    &ImportRef{Module: mapped.Module, Symbol: mapped.Symbol},
		}
	}
	return pgScalar(col.UDTName, col)
}

func pgScalar(udt string, col *schema.Column) TypeInfo {
	switch udt {
	case "bool":
		return simple("Boolean", "bool", "sqlalchemy")
	case "int2":
		return simple("SmallInteger", "int", "sqlalchemy")
	case "int4", "serial":
		return simple("Integer", "int", "sqlalchemy")
	case "int8", "bigserial":
		return simple("BigInteger", "int", "sqlalchemy")
	case "float4":
		return simple("Float", "float", "sqlalchemy")
	case "float8":
		return simple("Double", "float", "sqlalchemy")
	case "numeric":
		return TypeInfo{
			TypeExpr:   numericExpr(col.NumericPrecision, col.NumericScale),
			PythonType: "decimal.Decimal",
			Module:     "sqlalchemy",
			Symbol:     "Numeric",
		}
	case "text":
		return simple("Text", "str", "sqlalchemy")
	case "varchar", "char", "bpchar":
		expr := "String"
		if col.CharMaxLength != nil {
			expr = fmt.Sprintf("String(%d)", *col.CharMaxLength)
		}
		return TypeInfo{
			TypeExpr:   expr,
			PythonType: "str",
			Module:     "sqlalchemy",
			Symbol:     "String",
		}
	case "bytea":
		return simple("LargeBinary", "bytes", "sqlalchemy")
	case "timestamp":
		return simple("DateTime", "datetime.datetime", "sqlalchemy")
	case "timestamptz":
		return TypeInfo{
			TypeExpr:   "DateTime(timezone=True)",
			PythonType: "datetime.datetime",
			Module:     "sqlalchemy",
			Symbol:     "DateTime",
		}
	case "date":
		return simple("Date", "datetime.date", "sqlalchemy")
	case "time":
		return simple("Time", "datetime.time", "sqlalchemy")
	case "timetz":
		return TypeInfo{
			TypeExpr:   "Time(timezone=True)",
			PythonType: "datetime.time",
			Module:     "sqlalchemy",
			Symbol:     "Time",
		}
	case "interval":
		return simple("Interval", "datetime.timedelta", "sqlalchemy")
	case "uuid":
		return simple("UUID", "uuid.UUID", "sqlalchemy.dialects.postgresql")
	case "json":
		return simple("JSON", "dict", "sqlalchemy.dialects.postgresql")
	case "jsonb":
		return simple("JSONB", "dict", "sqlalchemy.dialects.postgresql")
	case "inet":
		return simple("INET", "str", "sqlalchemy.dialects.postgresql")
	case "cidr":
		return simple("CIDR", "str", "sqlalchemy.dialects.postgresql")
	default:
		// Unknown types degrade to the uppercased native name.
		upper := strings.ToUpper(udt)
		return TypeInfo{
			TypeExpr:   upper,
			PythonType: "str",
			Module:     "sqlalchemy",
			Symbol:     upper,
		}
	}
}

// stripPgTypecast removes a trailing type cast from a default expression,
// e.g. "'hello'::character varying" -> "'hello'" and "0::integer" -> "0".
// A "::" inside a quoted literal or nested parentheses is left alone.
func stripPgTypecast(expr string) string {
	if pos, ok := findTypecast(expr); ok {
		return strings.TrimSpace(expr[:pos])
	}
	return strings.TrimSpace(expr)
}

func findTypecast(expr string) (int, bool) {
	inQuotes := false
	depth := 0
	last := -1
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '\'':
			inQuotes = !inQuotes
		case '(':
			if !inQuotes {
				depth++
			}
		case ')':
			if !inQuotes && depth > 0 {
				depth--
			}
		case ':':
			if !inQuotes && depth == 0 && i+1 < len(expr) && expr[i+1] == ':' {
				last = i
				i++
			}
		}
	}
	return last, last >= 0
}
