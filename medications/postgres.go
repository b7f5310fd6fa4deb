// Package medications answers whether a medication presentation belongs to the
// HIV programme, backed by the PostgreSQL medication table.
package medications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/orchestrate-poc/endpoints/configuration"
	logger "github.com/orchestrate-poc/endpoints/log"
)

var log = logger.Get()
var dbLogger = log.WithField("prefix", "POSTGRES")

// ErrDatabaseNotConfigured is returned when host, name, user or password is missing.
var ErrDatabaseNotConfigured = errors.New("Faltan variables de entorno de base de datos")

// Checker decides whether a presentation code is an HIV programme medication
type Checker interface {
	IsHIV(ctx context.Context, presentacion string) (bool, error)
}

// DSN builds a libpq key/value connection string
func DSN(cfg configuration.Database) string {
	parts := []string{
		"host=" + quoteDSNValue(cfg.Host),
		"port=" + quoteDSNValue(cfg.Port),
		"dbname=" + quoteDSNValue(cfg.Name),
		"user=" + quoteDSNValue(cfg.User),
		"password=" + quoteDSNValue(cfg.Password),
		"sslmode=" + quoteDSNValue(cfg.SSLMode),
	}
	if cfg.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", cfg.ConnectTimeout))
	}
	return strings.Join(parts, " ")
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// OpenDatabase opens the pool and pings it. A failed ping is returned together with
// the pool so callers may keep serving and retry on the next query.
func OpenDatabase(cfg configuration.Database) (*sql.DB, error) {
	if !cfg.Configured() {
		return nil, ErrDatabaseNotConfigured
	}

	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectTimeout+1)*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		dbLogger.WithError(err).WithField("host", cfg.Host).Warn("Database not reachable")
		return db, fmt.Errorf("ping database: %w", err)
	}

	dbLogger.WithField("host", cfg.Host).Info("Connected")
	return db, nil
}

// PostgresChecker runs an EXISTS query against the HIV medication table
type PostgresChecker struct {
	db    *sql.DB
	query string
}

// NewPostgresChecker builds the lookup query for schema.table and column. db may be
// nil, every check then fails with ErrDatabaseNotConfigured.
func NewPostgresChecker(db *sql.DB, schema, table, column string) *PostgresChecker {
	return &PostgresChecker{db: db, query: existsQuery(schema, table, column)}
}

func existsQuery(schema, table, column string) string {
	return fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s.%s WHERE %s = $1) AS es_hiv",
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(table), pq.QuoteIdentifier(column),
	)
}

func (p *PostgresChecker) IsHIV(ctx context.Context, presentacion string) (bool, error) {
	if p.db == nil {
		return false, ErrDatabaseNotConfigured
	}

	var esHIV sql.NullBool
	err := p.db.QueryRowContext(ctx, p.query, presentacion).Scan(&esHIV)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query hiv medication %q: %w", presentacion, err)
	}

	return esHIV.Valid && esHIV.Bool, nil
}
