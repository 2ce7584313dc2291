package db

import (
	"fmt"
	"net/url"
	"strings"

	"sqlagen/internal/schema"
)

// ConnConfig is a parsed database URL ready to hand to a driver.
type ConnConfig struct {
	Dialect schema.Dialect
	// DSN is the driver-native connection string: a postgres:// URL for
	// pgx, or a sqlserver:// URL for go-mssqldb.
	DSN string
}

// pgDriverPrefixes maps SQLAlchemy-style PostgreSQL schemes to the
// scheme pgx understands.
var pgDriverPrefixes = []string{
	"postgresql+psycopg2://",
	"postgresql+asyncpg://",
	"postgresql+psycopg://",
}

var mssqlSchemes = []string{
	"mssql://",
	"mssql+pytds://",
	"mssql+pyodbc://",
	"mssql+pymssql://",
}

// ParseURL converts a SQLAlchemy-style database URL into a driver
// connection config. trustCert only applies to SQL Server URLs.
func ParseURL(rawURL string, trustCert bool) (*ConnConfig, error) {
	for _, prefix := range pgDriverPrefixes {
		if rest, ok := strings.CutPrefix(rawURL, prefix); ok {
			return &ConnConfig{Dialect: schema.Postgres, DSN: "postgres://" + rest}, nil
		}
	}
	if strings.HasPrefix(rawURL, "postgresql://") || strings.HasPrefix(rawURL, "postgres://") {
		return &ConnConfig{Dialect: schema.Postgres, DSN: rawURL}, nil
	}

	for _, scheme := range mssqlSchemes {
		if strings.HasPrefix(rawURL, scheme) {
			return parseMSSQLURL(rawURL, trustCert)
		}
	}

	scheme, _, _ := strings.Cut(rawURL, "://")
	return nil, fmt.Errorf("unsupported database URL scheme: %s", scheme)
}

// parseMSSQLURL builds a go-mssqldb sqlserver:// DSN from any of the
// accepted mssql URL variants.
func parseMSSQLURL(rawURL string, trustCert bool) (*ConnConfig, error) {
	normalized := rawURL
	for _, scheme := range mssqlSchemes[1:] {
		if rest, ok := strings.CutPrefix(rawURL, scheme); ok {
			normalized = "mssql://" + rest
			break
		}
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid mssql URL: %w", err)
	}

	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := parsed.Port()
	if port == "" {
		port = "1433"
	}
	database := strings.TrimPrefix(parsed.Path, "/")
	if database == "" {
		return nil, fmt.Errorf("mssql URL must include a database name")
	}

	dsn := url.URL{
		Scheme: "sqlserver",
		User:   parsed.User,
		Host:   host + ":" + port,
	}
	query := url.Values{}
	query.Set("database", database)
	if trustCert {
		query.Set("TrustServerCertificate", "true")
	}
	dsn.RawQuery = query.Encode()

	return &ConnConfig{Dialect: schema.MSSQL, DSN: dsn.String()}, nil
}
