package medications

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/configuration"
)

const expectedQuery = `SELECT EXISTS (SELECT 1 FROM "public"."medicamentos_HIV.csv" WHERE "Presentacion" = $1) AS es_hiv`

func newMockChecker(t *testing.T) (*PostgresChecker, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewPostgresChecker(db, "public", "medicamentos_HIV.csv", "Presentacion"), mock
}

func TestExistsQuery(t *testing.T) {
	assert.Equal(t, expectedQuery, existsQuery("public", "medicamentos_HIV.csv", "Presentacion"))
	assert.Equal(t,
		`SELECT EXISTS (SELECT 1 FROM "meds"."odd""name" WHERE "code" = $1) AS es_hiv`,
		existsQuery("meds", `odd"name`, "code"))
}

func TestPostgresChecker(t *testing.T) {
	tests := []struct {
		name         string
		presentacion string
		rows         *sqlmock.Rows
		want         bool
	}{
		{"listed", "45282", sqlmock.NewRows([]string{"es_hiv"}).AddRow(true), true},
		{"not listed", "2039", sqlmock.NewRows([]string{"es_hiv"}).AddRow(false), false},
		{"no row", "0", sqlmock.NewRows([]string{"es_hiv"}), false},
		{"null", "1", sqlmock.NewRows([]string{"es_hiv"}).AddRow(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, mock := newMockChecker(t)
			mock.ExpectQuery(expectedQuery).WithArgs(tt.presentacion).WillReturnRows(tt.rows)

			got, err := checker.IsHIV(context.Background(), tt.presentacion)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresCheckerQueryError(t *testing.T) {
	checker, mock := newMockChecker(t)
	mock.ExpectQuery(expectedQuery).WithArgs("18001").WillReturnError(errors.New("relation does not exist"))

	_, err := checker.IsHIV(context.Background(), "18001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckerWithoutDatabase(t *testing.T) {
	checker := NewPostgresChecker(nil, "public", "t", "c")
	_, err := checker.IsHIV(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrDatabaseNotConfigured))
	assert.Equal(t, "Faltan variables de entorno de base de datos", err.Error())
}

func TestOpenDatabaseNotConfigured(t *testing.T) {
	db, err := OpenDatabase(configuration.Database{Host: "db", Name: "hiv"})
	assert.Nil(t, db)
	assert.True(t, errors.Is(err, ErrDatabaseNotConfigured))
}

func TestDSN(t *testing.T) {
	dsn := DSN(configuration.Database{
		Host:           "db.example.com",
		Port:           "5432",
		Name:           "hiv",
		User:           "reader",
		Password:       "it's secret",
		SSLMode:        "require",
		ConnectTimeout: 5,
	})
	assert.Equal(t,
		`host=db.example.com port=5432 dbname=hiv user=reader password='it\'s secret' sslmode=require connect_timeout=5`,
		dsn)
}

type countingChecker struct {
	calls  int
	answer bool
	err    error
}

func (c *countingChecker) IsHIV(ctx context.Context, presentacion string) (bool, error) {
	c.calls++
	return c.answer, c.err
}

func TestCachedChecker(t *testing.T) {
	cache := &backends.InMemoryBackend{}
	require.NoError(t, cache.Init(nil))

	inner := &countingChecker{answer: true}
	hits := 0
	checker := &CachedChecker{Checker: inner, Cache: cache, OnHit: func() { hits++ }}

	for i := 0; i < 3; i++ {
		got, err := checker.IsHIV(context.Background(), "45282")
		require.NoError(t, err)
		assert.True(t, got)
	}

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 2, hits)
}

func TestCachedCheckerDoesNotCacheErrors(t *testing.T) {
	cache := &backends.InMemoryBackend{}
	require.NoError(t, cache.Init(nil))

	inner := &countingChecker{err: errors.New("down")}
	checker := &CachedChecker{Checker: inner, Cache: cache}

	_, err := checker.IsHIV(context.Background(), "1")
	assert.Error(t, err)
	_, err = checker.IsHIV(context.Background(), "1")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Empty(t, cache.GetAll())
}

func TestCachedCheckerSurvivesBrokenCache(t *testing.T) {
	// an uninitialised store fails every SetKey
	inner := &countingChecker{answer: false}
	checker := &CachedChecker{Checker: inner, Cache: &backends.InMemoryBackend{}}

	got, err := checker.IsHIV(context.Background(), "2039")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestPostgresIntegration(t *testing.T) {
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set; skipping postgres integration test")
	}

	var conf configuration.Configuration
	require.NoError(t, configuration.LoadConfig("", &conf))

	db, err := OpenDatabase(conf.Database)
	require.NoError(t, err)
	defer db.Close()

	checker := NewPostgresChecker(db, conf.Database.Schema, conf.Database.Table, conf.Database.Column)
	_, err = checker.IsHIV(context.Background(), "45282")
	assert.NoError(t, err)
}
