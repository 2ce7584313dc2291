package db

import (
	"context"
	"fmt"
	"sort"

	"sqlagen/internal/schema"
)

// PostgresExtractor handles schema extraction from PostgreSQL
type PostgresExtractor struct {
	client *PostgresClient
}

// NewPostgresExtractor creates a new PostgreSQL schema extractor
func NewPostgresExtractor(client *PostgresClient) *PostgresExtractor {
	return &PostgresExtractor{client: client}
}

// ExtractSchema extracts the full schema metadata for the given schemas.
// If tables is non-empty, only the named tables are kept.
func (e *PostgresExtractor) ExtractSchema(ctx context.Context, schemas, tables []string, noViews bool) (*schema.Schema, error) {
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

	return &schema.Schema{Dialect: schema.Postgres, Tables: allTables}, nil
}

// filterTables keeps only the requested tables. An empty filter keeps everything.
func filterTables(all []schema.Table, requested []string) []schema.Table {
	if len(requested) == 0 {
		return all
	}
	keep := make(map[string]bool, len(requested))
	for _, name := range requested {
		keep[name] = true
	}
	var filtered []schema.Table
	for _, t := range all {
		if keep[t.Name] {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// extractTables lists tables and views in a schema, with their comments
func (e *PostgresExtractor) extractTables(ctx context.Context, schemaName string, noViews bool) ([]schema.Table, error) {
	query := `
		SELECT t.table_schema, t.table_name, t.table_type,
			obj_description(
				(quote_ident(t.table_schema) || '.' || quote_ident(t.table_name))::regclass
			) AS comment
		FROM information_schema.tables t
		WHERE t.table_schema = $1
			AND t.table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY t.table_name
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var t schema.Table
		var tableType string
		var comment *string
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

		if comment != nil {
			t.Comment = *comment
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// extractColumns extracts column metadata in ordinal order
func (e *PostgresExtractor) extractColumns(ctx context.Context, schemaName, tableName string) ([]schema.Column, error) {
	query := `
		SELECT c.column_name, c.ordinal_position::int4, c.is_nullable = 'YES' AS is_nullable,
			c.data_type, c.udt_name, c.character_maximum_length::int4,
			c.numeric_precision::int4, c.numeric_scale::int4, c.column_default,
			c.is_identity = 'YES' AS is_identity,
			col_description(
				(quote_ident(c.table_schema) || '.' || quote_ident(c.table_name))::regclass,
				c.ordinal_position
			) AS comment
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var comment *string
		if err := rows.Scan(&col.Name, &col.OrdinalPosition, &col.Nullable,
			&col.DataType, &col.UDTName, &col.CharMaxLength,
			&col.NumericPrecision, &col.NumericScale, &col.Default,
			&col.IsIdentity, &comment); err != nil {
			return nil, err
		}
		if comment != nil {
			col.Comment = *comment
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Identity sequence parameters need a second lookup per column
	for i := range columns {
		if !columns[i].IsIdentity {
			continue
		}
		identity, err := e.extractIdentity(ctx, schemaName, tableName, columns[i].Name)
		if err != nil {
			return nil, err
		}
		columns[i].Identity = identity
	}

	return columns, nil
}

// extractIdentity queries sequence parameters for an identity column
func (e *PostgresExtractor) extractIdentity(ctx context.Context, schemaName, tableName, columnName string) (*schema.Identity, error) {
	query := `
		SELECT s.seqstart, s.seqincrement, s.seqmin, s.seqmax, s.seqcycle, s.seqcache
		FROM pg_sequence s
		JOIN pg_class c ON c.oid = s.seqrelid
		WHERE c.oid = pg_get_serial_sequence($1, $2)::regclass
	`

	qualified := schemaName + "." + tableName
	rows, err := e.client.GetConnection().Query(ctx, query, qualified, columnName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var identity schema.Identity
	if err := rows.Scan(&identity.Start, &identity.Increment, &identity.MinValue,
		&identity.MaxValue, &identity.Cycle, &identity.Cache); err != nil {
		return nil, err
	}
	return &identity, rows.Err()
}

// extractConstraints extracts primary key, foreign key, and unique constraints
func (e *PostgresExtractor) extractConstraints(ctx context.Context, schemaName, tableName string) ([]schema.Constraint, error) {
	var constraints []schema.Constraint

	pks, err := e.extractKeyConstraints(ctx, schemaName, tableName, "PRIMARY KEY", schema.PrimaryKey)
	if err != nil {
		return nil, err
	}
	constraints = append(constraints, pks...)

	fks, err := e.extractForeignKeys(ctx, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	constraints = append(constraints, fks...)

	uqs, err := e.extractKeyConstraints(ctx, schemaName, tableName, "UNIQUE", schema.Unique)
	if err != nil {
		return nil, err
	}
	constraints = append(constraints, uqs...)

	return constraints, nil
}

// extractKeyConstraints extracts PRIMARY KEY or UNIQUE constraints, grouping
// columns by constraint name
func (e *PostgresExtractor) extractKeyConstraints(ctx context.Context, schemaName, tableName, constraintType string, kind schema.ConstraintKind) ([]schema.Constraint, error) {
	query := `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			USING (constraint_name, table_schema, table_name)
		WHERE tc.table_schema = $1 AND tc.table_name = $2
			AND tc.constraint_type = $3
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName, tableName, constraintType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string][]string)
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return nil, err
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
			Kind:    kind,
			Columns: grouped[name],
		})
	}
	return constraints, nil
}

// extractForeignKeys extracts foreign keys, grouping columns by constraint name
func (e *PostgresExtractor) extractForeignKeys(ctx context.Context, schemaName, tableName string) ([]schema.Constraint, error) {
	query := `
		SELECT kcu.column_name, ccu.table_schema AS ref_schema, ccu.table_name AS ref_table,
			ccu.column_name AS ref_column, tc.constraint_name,
			rc.update_rule, rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
			AND kcu.table_name = tc.table_name
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.constraint_schema = tc.constraint_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.constraint_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2
			AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string]*schema.Constraint)
	for rows.Next() {
		var name, column, refSchema, refTable, refColumn, updateRule, deleteRule string
		if err := rows.Scan(&column, &refSchema, &refTable, &refColumn, &name,
			&updateRule, &deleteRule); err != nil {
			return nil, err
		}

		fk, ok := grouped[name]
		if !ok {
			fk = &schema.Constraint{
				Name: name,
				Kind: schema.ForeignKey,
				ForeignKeyRef: &schema.ForeignKeyInfo{
					RefSchema:  refSchema,
					RefTable:   refTable,
					UpdateRule: updateRule,
					DeleteRule: deleteRule,
				},
			}
			grouped[name] = fk
		}
		// constraint_column_usage yields a cross product for composite keys
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

// extractIndexes extracts non-primary indexes with their key columns
func (e *PostgresExtractor) extractIndexes(ctx context.Context, schemaName, tableName string) ([]schema.Index, error) {
	query := `
		SELECT i.relname AS index_name, ix.indisunique AS is_unique,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS columns
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1 AND t.relname = $2 AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		if err := rows.Scan(&idx.Name, &idx.IsUnique, &idx.Columns); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

func sortedConstraintNames(grouped map[string][]string) []string {
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
