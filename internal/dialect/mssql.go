package dialect

import (
	"fmt"
	"strings"

	"sqlagen/internal/schema"
)

// MSSQL is the SQL Server dialect descriptor.
var MSSQL = &Descriptor{
	Name:          schema.MSSQL,
	DefaultSchema: "dbo",
	MapColumn:     mssqlMapColumn,
	StripDefault:  stripMSSQLParens,
	IsSequenceDefault: func(string) bool {
		// Identity columns carry NULL defaults on SQL Server.
		return false
	},
	IdentityArgs: func(id *schema.Identity) string {
		return fmt.Sprintf("Identity(start=%d, increment=%d)", id.Start, id.Increment)
	},
}

func mssqlMapColumn(col *schema.Column) TypeInfo {
	switch col.UDTName {
	case "bit":
		return simple("Boolean", "bool", "sqlalchemy")
	case "tinyint":
		return simple("TINYINT", "int", "sqlalchemy.dialects.mssql")
	case "smallint":
		return simple("SmallInteger", "int", "sqlalchemy")
	case "int":
		return simple("Integer", "int", "sqlalchemy")
	case "bigint":
		return simple("BigInteger", "int", "sqlalchemy")
	case "real":
		return simple("Float", "float", "sqlalchemy")
	case "float":
		return simple("Double", "float", "sqlalchemy")
	case "decimal", "numeric":
		return TypeInfo{
			TypeExpr:   numericExpr(col.NumericPrecision, col.NumericScale),
			PythonType: "decimal.Decimal",
			Module:     "sqlalchemy",
			Symbol:     "Numeric",
		}
	case "money":
		return TypeInfo{
			TypeExpr:   "Numeric(19, 4)",
			PythonType: "decimal.Decimal",
			Module:     "sqlalchemy",
			Symbol:     "Numeric",
		}
	case "smallmoney":
		return TypeInfo{
			TypeExpr:   "Numeric(10, 4)",
			PythonType: "decimal.Decimal",
			Module:     "sqlalchemy",
			Symbol:     "Numeric",
		}
	case "varchar", "char":
		return TypeInfo{
			TypeExpr:   mssqlStringExpr("String", col.CharMaxLength, col.Collation),
			PythonType: "str",
			Module:     "sqlalchemy",
			Symbol:     "String",
		}
	case "nvarchar", "nchar":
		return TypeInfo{
			TypeExpr:   mssqlStringExpr("Unicode", col.CharMaxLength, col.Collation),
			PythonType: "str",
			Module:     "sqlalchemy",
			Symbol:     "Unicode",
		}
	case "text":
		return simple("Text", "str", "sqlalchemy")
	case "ntext":
		return simple("UnicodeText", "str", "sqlalchemy")
	case "binary", "varbinary", "image":
		return simple("LargeBinary", "bytes", "sqlalchemy")
	case "datetime", "datetime2", "smalldatetime":
		return simple("DateTime", "datetime.datetime", "sqlalchemy")
	case "datetimeoffset":
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
	case "uniqueidentifier":
		return simple("UNIQUEIDENTIFIER", "str", "sqlalchemy.dialects.mssql")
	default:
		upper := strings.ToUpper(col.UDTName)
		return TypeInfo{
			TypeExpr:   upper,
			PythonType: "str",
			Module:     "sqlalchemy",
			Symbol:     upper,
		}
	}
}

// mssqlStringExpr renders String/Unicode with optional length and collation:
// String(50, 'collation'), Unicode(collation='collation'), String(50), String.
func mssqlStringExpr(base string, length *int, collation string) string {
	switch {
	case length != nil && collation != "":
		return fmt.Sprintf("%s(%d, '%s')", base, *length, collation)
	case length != nil:
		return fmt.Sprintf("%s(%d)", base, *length)
	case collation != "":
		return fmt.Sprintf("%s(collation='%s')", base, collation)
	default:
		return base
	}
}

// stripMSSQLParens unwraps the parentheses SQL Server stores around default
// expressions and drops the N prefix from unicode string literals,
// e.g. "((0))" -> "0" and "(N'hello')" -> "'hello'".
func stripMSSQLParens(expr string) string {
	s := strings.TrimSpace(expr)
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "N'") || strings.HasPrefix(s, `N"`) {
		s = s[1:]
	}
	return strings.TrimSpace(s)
}
