package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyDSN)
}

func TestOpen_PingsAndReturnsDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()

	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })
	var gotDriver, gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return db, nil
	}

	got, err := Open(context.Background(), "postgres://u:p@h/db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = got.Close() })

	assert.Same(t, db, got)
	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, "postgres://u:p@h/db", gotDSN)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_PingFailureClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }

	_, err = Open(context.Background(), "postgres://u:p@h/db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_DriverError(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") }

	_, err := Open(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db open error")
}
