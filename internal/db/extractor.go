// Package db connects to PostgreSQL and SQL Server databases and
// extracts their schema metadata.
package db

import (
	"context"
	"fmt"

	"sqlagen/internal/schema"
)

// Extractor extracts schema metadata from a live database
type Extractor interface {
	// ExtractSchema extracts the full schema metadata for the given
	// schemas. If tables is non-empty, only the named tables are kept.
	ExtractSchema(ctx context.Context, schemas, tables []string, noViews bool) (*schema.Schema, error)
}

// Connect opens a connection for the parsed config and returns the
// matching extractor along with a function that closes the connection.
func Connect(ctx context.Context, cfg *ConnConfig) (Extractor, func() error, error) {
	switch cfg.Dialect {
	case schema.MSSQL:
		client, err := NewMSSQLClient(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return NewMSSQLExtractor(client), client.Close, nil
	case schema.Postgres:
		client, err := NewPostgresClient(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error {
			return client.Close(context.Background())
		}
		return NewPostgresExtractor(client), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dialect: %s", cfg.Dialect)
	}
}
