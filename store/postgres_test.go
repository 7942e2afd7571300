package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(time.Hour)
	mock.ExpectQuery("SELECT value, created_at, updated_at FROM kv_records WHERE namespace = \\$1 AND key = \\$2").
		WithArgs("contents", "test.ipynb").
		WillReturnRows(sqlmock.NewRows([]string{"value", "created_at", "updated_at"}).
			AddRow(`{"cells":[]}`, created, updated))

	s := NewPostgresStore(db, "contents")
	rec, err := s.Fetch(context.Background(), "test.ipynb")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, `{"cells":[]}`, rec.Value)
	assert.Equal(t, created, rec.Created)
	assert.Equal(t, updated, rec.LastModified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFetchMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value, created_at, updated_at FROM kv_records").
		WithArgs("contents", "missing.ipynb").
		WillReturnRows(sqlmock.NewRows([]string{"value", "created_at", "updated_at"}))

	s := NewPostgresStore(db, "contents")
	rec, err := s.Fetch(context.Background(), "missing.ipynb")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO kv_records .* ON CONFLICT \\(namespace, key\\) DO UPDATE").
		WithArgs("contents", "test.ipynb", "{}", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresStore(db, "contents")
	s.now = func() time.Time { return now }
	require.NoError(t, s.Save(context.Background(), "test.ipynb", "{}"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO kv_records").WillReturnError(boom)

	s := NewPostgresStore(db, "contents")
	err = s.Save(context.Background(), "test.ipynb", "{}")
	assert.ErrorIs(t, err, boom)
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresStore(db, "contents").EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
