package database

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	dsn := Config{
		User:       "leadsvc",
		Password:   "p@ss",
		Host:       "db:5432",
		Name:       "leads",
		DisableTLS: true,
	}.DSN()

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/leads", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "utc", u.Query().Get("timezone"))

	assert.Contains(t, Config{}.DSN(), "sslmode=require")
}

func TestStatusCheck(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()
	mock.ExpectQuery("SELECT true").WillReturnRows(sqlmock.NewRows([]string{"bool"}).AddRow(true))

	require.NoError(t, StatusCheck(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusCheckGivesUpOnContext(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	for i := 0; i < 10; i++ {
		mock.ExpectPing().WillReturnError(errors.New("down"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err = StatusCheck(ctx, db)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
