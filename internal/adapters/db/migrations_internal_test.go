package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMigrator(t *testing.T) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return &Migrator{
		config: &MigrationConfig{SchemaName: "public", TableName: "schema_migrations"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		db:     sqlDB,
	}, mock
}

func TestMigrator_AppliedMigrations(t *testing.T) {
	m, mock := newMockMigrator(t)

	mock.ExpectQuery(`SELECT version, dirty FROM public\.schema_migrations ORDER BY version ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).
			AddRow(1, false).
			AddRow(2, true))

	applied, err := m.appliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []AppliedMigration{{Version: 1}, {Version: 2, Dirty: true}}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_AppliedMigrations_QueryError(t *testing.T) {
	m, mock := newMockMigrator(t)

	mock.ExpectQuery(`SELECT version, dirty FROM`).WillReturnError(errors.New("relation does not exist"))

	_, err := m.appliedMigrations(context.Background())
	assert.ErrorContains(t, err, "failed to query migrations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMigrations_Embedded(t *testing.T) {
	files, err := listMigrations(EmbeddedMigrations, "migrations")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, uint(1), files[0].Version)
	assert.Equal(t, "create_product_variants", files[0].Name)
	assert.Equal(t, uint(2), files[1].Version)
	assert.True(t, files[1].HasUp && files[1].HasDown)
}
