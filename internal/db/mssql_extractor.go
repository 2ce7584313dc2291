package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"sqlagen/internal/schema"
)

// MSSQLExtractor handles schema extraction from SQL Server
type MSSQLExtractor struct {
	client *MSSQLClient
}

// NewMSSQLExtractor creates a new SQL Server schema extractor
func NewMSSQLExtractor(client *MSSQLClient) *MSSQLExtractor {
	return &MSSQLExtractor{client: client}
}

// ExtractSchema extracts the full schema metadata for the given schemas.
// If tables is non-empty, only the named tables are kept. Tables are
// returned sorted by name across all schemas.
func (e *MSSQLExtractor) ExtractSchema(ctx context.Context, schemas, tables []string, noViews bool) (*schema.Schema, error) {
	var allTables []schema.Table

	for _, schemaName := range schemas {
		schemaTables, err := e.extractTables(ctx, schemaName, noViews)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables in schema %s: %w", schemaName, err)
		}

		schemaTables = filterTables(schemaTables, tables)

		for i := range schemaTables {
			t := &schemaTables[i]

			t.Columns, err = e.extractColumns(ctx, t.Schema, t.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to extract columns for %s: %w", t.Name, err)
			}
			t.Constraints, err = e.extractConstraints(ctx, t.Schema, t.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to extract constraints for %s: %w", t.Name, err)
			}
			t.Indexes, err = e.extractIndexes(ctx, t.Schema, t.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to extract indexes for %s: %w", t.Name, err)
			}
		}

		allTables = append(allTables, schemaTables...)
	}

	sort.Slice(allTables, func(i, j int) bool {
		return allTables[i].Name < allTables[j].Name
	})

	return &schema.Schema{Dialect: schema.MSSQL, Tables: allTables}, nil
}

// extractTables lists tables and views in a schema, with MS_Description comments
func (e *MSSQLExtractor) extractTables(ctx context.Context, schemaName string, noViews bool) ([]schema.Table, error) {
	query := `
		SELECT
			t.TABLE_SCHEMA,
			t.TABLE_NAME,
			t.TABLE_TYPE,
			CAST(ep.value AS NVARCHAR(MAX)) AS comment
		FROM INFORMATION_SCHEMA.TABLES t
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = OBJECT_ID(QUOTENAME(t.TABLE_SCHEMA) + '.' + QUOTENAME(t.TABLE_NAME))
			AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
		WHERE t.TABLE_SCHEMA = @p1
			AND t.TABLE_TYPE IN ('BASE TABLE', 'VIEW')
		ORDER BY t.TABLE_NAME
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var t schema.Table
		var tableType string
		var comment sql.NullString
		if err := rows.Scan(&t.Schema, &t.Name, &tableType, &comment); err != nil {
			return nil, err
		}

		switch tableType {
		case "BASE TABLE":
			t.Kind = schema.KindTable
		case "VIEW":
			if noViews {
				continue
			}
			t.Kind = schema.KindView
		default:
			continue
		}

		t.Comment = comment.String
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// extractColumns extracts column metadata in ordinal order
func (e *MSSQLExtractor) extractColumns(ctx context.Context, schemaName, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.COLUMN_NAME,
			c.ORDINAL_POSITION,
			CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS is_nullable,
			c.DATA_TYPE,
			c.CHARACTER_MAXIMUM_LENGTH,
			c.NUMERIC_PRECISION,
			c.NUMERIC_SCALE,
			c.COLUMN_DEFAULT,
			COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity') AS is_identity,
			CAST(ic.seed_value AS BIGINT) AS seed_value,
			CAST(ic.increment_value AS BIGINT) AS increment_value,
			CAST(ep.value AS NVARCHAR(MAX)) AS comment,
			c.COLLATION_NAME
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN sys.identity_columns ic
			ON ic.object_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
			AND ic.name = c.COLUMN_NAME
		LEFT JOIN sys.columns sc
			ON sc.object_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
			AND sc.name = c.COLUMN_NAME
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = sc.object_id
			AND ep.minor_id = sc.column_id
			AND ep.name = 'MS_Description'
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable int
		var charMaxLength, numericPrecision, numericScale sql.NullInt64
		var defaultVal, comment, collation sql.NullString
		var isIdentity sql.NullInt64
		var seed, increment sql.NullInt64

		if err := rows.Scan(&col.Name, &col.OrdinalPosition, &nullable,
			&col.DataType, &charMaxLength, &numericPrecision, &numericScale,
			&defaultVal, &isIdentity, &seed, &increment, &comment, &collation); err != nil {
			return nil, err
		}

		col.Nullable = nullable == 1
		col.DataType = strings.ToLower(col.DataType)
		col.UDTName = col.DataType
		// CHARACTER_MAXIMUM_LENGTH is -1 for varchar(max)/nvarchar(max)
		if charMaxLength.Valid && charMaxLength.Int64 > 0 {
			n := int(charMaxLength.Int64)
			col.CharMaxLength = &n
		}
		if numericPrecision.Valid {
			n := int(numericPrecision.Int64)
			col.NumericPrecision = &n
		}
		if numericScale.Valid {
			n := int(numericScale.Int64)
			col.NumericScale = &n
		}
		if defaultVal.Valid {
			s := defaultVal.String
			col.Default = &s
		}
		col.Comment = comment.String
		col.Collation = collation.String

		if isIdentity.Valid && isIdentity.Int64 == 1 {
			col.IsIdentity = true
			identity := &schema.Identity{Start: 1, Increment: 1}
			if seed.Valid {
				identity.Start = seed.Int64
			}
			if increment.Valid {
				identity.Increment = increment.Int64
			}
			col.Identity = identity
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractConstraints extracts primary key, foreign key, and unique constraints
func (e *MSSQLExtractor) extractConstraints(ctx context.Context, schemaName, tableName string) ([]schema.Constraint, error) {
	keyConstraints, err := e.extractKeyConstraints(ctx, schemaName, tableName)
	if err != nil {
		return nil, err
	}

	fks, err := e.extractForeignKeys(ctx, schemaName, tableName)
	if err != nil {
		return nil, err
	}

	return append(keyConstraints, fks...), nil
}

// extractKeyConstraints extracts PRIMARY KEY and UNIQUE constraints together,
// grouping columns by constraint name
func (e *MSSQLExtractor) extractKeyConstraints(ctx context.Context, schemaName, tableName string) ([]schema.Constraint, error) {
	query := `
		SELECT
			tc.CONSTRAINT_NAME,
			tc.CONSTRAINT_TYPE,
			kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
			ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
			AND kcu.TABLE_SCHEMA = tc.TABLE_SCHEMA
			AND kcu.TABLE_NAME = tc.TABLE_NAME
		WHERE tc.TABLE_SCHEMA = @p1
			AND tc.TABLE_NAME = @p2
			AND tc.CONSTRAINT_TYPE IN ('PRIMARY KEY', 'UNIQUE')
		ORDER BY tc.CONSTRAINT_NAME, kcu.ORDINAL_POSITION
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kinds := make(map[string]schema.ConstraintKind)
	grouped := make(map[string][]string)
	for rows.Next() {
		var name, constraintType, column string
		if err := rows.Scan(&name, &constraintType, &column); err != nil {
			return nil, err
		}

		switch constraintType {
		case "PRIMARY KEY":
			kinds[name] = schema.PrimaryKey
		case "UNIQUE":
			kinds[name] = schema.Unique
		default:
			continue
		}
		grouped[name] = append(grouped[name], column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var constraints []schema.Constraint
	for _, name := range sortedConstraintNames(grouped) {
		constraints = append(constraints, schema.Constraint{
			Name:    name,
			Kind:    kinds[name],
			Columns: grouped[name],
		})
	}
	return constraints, nil
}

// extractForeignKeys extracts foreign keys from the sys catalog, grouping
// columns by constraint name
func (e *MSSQLExtractor) extractForeignKeys(ctx context.Context, schemaName, tableName string) ([]schema.Constraint, error) {
	query := `
		SELECT
			fk.name AS constraint_name,
			COL_NAME(fkc.parent_object_id, fkc.parent_column_id) AS column_name,
			SCHEMA_NAME(ref_t.schema_id) AS ref_schema,
			ref_t.name AS ref_table,
			COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id) AS ref_column,
			fk.update_referential_action_desc AS update_rule,
			fk.delete_referential_action_desc AS delete_rule
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.tables ref_t ON ref_t.object_id = fk.referenced_object_id
		WHERE fk.parent_object_id = OBJECT_ID(QUOTENAME(@p1) + '.' + QUOTENAME(@p2))
		ORDER BY fk.name, fkc.constraint_column_id
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string]*schema.Constraint)
	for rows.Next() {
		var name, column, refSchema, refTable, refColumn, updateRule, deleteRule string
		if err := rows.Scan(&name, &column, &refSchema, &refTable, &refColumn,
			&updateRule, &deleteRule); err != nil {
			return nil, err
		}

		fk, ok := grouped[name]
		if !ok {
			fk = &schema.Constraint{
				Name: name,
				Kind: schema.ForeignKey,
				ForeignKeyRef: &schema.ForeignKeyInfo{
					RefSchema: refSchema,
					RefTable:  refTable,
					// sys catalogs use underscores in action names
					UpdateRule: strings.ReplaceAll(updateRule, "_", " "),
					DeleteRule: strings.ReplaceAll(deleteRule, "_", " "),
				},
			}
			grouped[name] = fk
		}
		if !containsString(fk.Columns, column) {
			fk.Columns = append(fk.Columns, column)
		}
		if !containsString(fk.ForeignKeyRef.RefColumns, refColumn) {
			fk.ForeignKeyRef.RefColumns = append(fk.ForeignKeyRef.RefColumns, refColumn)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	var constraints []schema.Constraint
	for _, name := range names {
		constraints = append(constraints, *grouped[name])
	}
	return constraints, nil
}

// extractIndexes extracts non-primary indexes, grouping the per-column rows
// by index name
func (e *MSSQLExtractor) extractIndexes(ctx context.Context, schemaName, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			i.name AS index_name,
			i.is_unique,
			COL_NAME(ic.object_id, ic.column_id) AS column_name
		FROM sys.indexes i
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		WHERE i.object_id = OBJECT_ID(QUOTENAME(@p1) + '.' + QUOTENAME(@p2))
			AND i.is_primary_key = 0
			AND i.type <> 0
			AND ic.key_ordinal > 0
		ORDER BY i.name, ic.key_ordinal
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unique := make(map[string]bool)
	grouped := make(map[string][]string)
	for rows.Next() {
		var name, column string
		var isUnique bool
		if err := rows.Scan(&name, &isUnique, &column); err != nil {
			return nil, err
		}
		unique[name] = isUnique
		grouped[name] = append(grouped[name], column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []schema.Index
	for _, name := range sortedConstraintNames(grouped) {
		indexes = append(indexes, schema.Index{
			Name:     name,
			IsUnique: unique[name],
			Columns:  grouped[name],
		})
	}
	return indexes, rows.Err()
}
