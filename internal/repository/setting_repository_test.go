package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthworks/volunteer-api/internal/models"
)

func TestSettingRepositoryListByKeys(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow(models.SettingRequireSkills, "true", time.Now())
	mock.ExpectQuery("SELECT key, value, updated_at FROM settings WHERE key IN").
		WithArgs(models.SettingRequireSkills).
		WillReturnRows(rows)

	settings, err := repo.ListByKeys(context.Background(), []string{models.SettingRequireSkills})
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "true", settings[0].Value)
}

func TestSettingRepositoryListByKeysEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	settings, err := repo.ListByKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestSettingRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settings").
		WithArgs(models.SettingRequireSkills, "true", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO settings").
		WithArgs(models.SettingAllowUTCLegacyFallback, "false", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	settings := []models.Setting{
		{Key: models.SettingRequireSkills, Value: "true"},
		{Key: models.SettingAllowUTCLegacyFallback, Value: "false"},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), settings))
}
