package codegen

import "github.com/go-openapi/inflect"

// ClassName converts a table name to its generated class name,
// e.g. "order_items" -> "OrderItems".
func ClassName(table string) string {
	return inflect.Camelize(table)
}

// TableVarName is the module-level variable name of a plain table construct,
// e.g. "users" -> "t_users".
func TableVarName(table string) string {
	return "t_" + table
}
