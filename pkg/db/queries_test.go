package db

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapectl/pkg/history"
	"scrapectl/pkg/models"
)

func TestGetValueMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT value FROM kv_store`).
		WithArgs("scrapingHistory").
		WillReturnRows(pgxmock.NewRows([]string{"value"}))

	value, err := NewWithPool(mock).GetValue(context.Background(), "scrapingHistory")
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetValueError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT value FROM kv_store`).
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, err = NewWithPool(mock).GetValue(context.Background(), "k")
	assert.ErrorContains(t, err, "connection reset")
}

func TestHistoryBackendRoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	backend := NewHistoryBackend(NewWithPool(mock), "scrapingHistory")
	store := history.NewStore(backend)

	mock.ExpectQuery(`SELECT value FROM kv_store`).
		WithArgs("scrapingHistory").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`[{"url":"https://a.example","action":"fetch","timestamp":"t","data":{}}]`))
	mock.ExpectExec(`INSERT INTO kv_store`).
		WithArgs("scrapingHistory", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Append(ctx, models.HistoryEntry{URL: "https://b.example", Action: "extract_links", Timestamp: "t", Data: models.Payload{}}))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://b.example", entries[0].URL)
	assert.Equal(t, "https://a.example", entries[1].URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, NewWithPool(mock).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
