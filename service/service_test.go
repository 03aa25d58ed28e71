package service

import (
	"context"
	"errors"
	"testing"

	"collector-service/outbox"
	"collector-service/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeStore struct {
	puts []string
	fail bool
}

func (f *fakeStore) Put(_ context.Context, objectName string, _ []byte, _ string) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	f.puts = append(f.puts, objectName)
	return "media/" + objectName, nil
}

func setupTestRepo(t *testing.T) (repository.CollectorRepository, *outbox.Publisher) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewRepoWithGorm(db)
	require.NoError(t, repo.Migrate())
	return repo, outbox.NewPublisher(repo)
}
