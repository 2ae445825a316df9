package db

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRunKeystoneMigration(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS credentials")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, RunKeystoneMigration(context.Background(), sqlDB))
	require.NoError(t, mock.ExpectationsWereMet())
}
