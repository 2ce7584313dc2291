package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
)

// MSSQLClient manages the connection to SQL Server
type MSSQLClient struct {
	db *sql.DB
}

// NewMSSQLClient connects to SQL Server using a sqlserver:// DSN
func NewMSSQLClient(ctx context.Context, dsn string) (*MSSQLClient, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MSSQLClient{db: db}, nil
}

// Close closes the database connection
func (c *MSSQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MSSQLClient) GetDB() *sql.DB {
	return c.db
}
