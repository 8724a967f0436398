package migration_test

import (
	"testing"
	"testing/fstest"

	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/postgres"
	"github.com/saransh1220/filelink/pkg/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRunner_DefaultLogger(t *testing.T) {
	r := migration.NewRunner(&migration.Config{
		Source:      postgres.Migrations,
		Path:        "migrations",
		DatabaseURL: "postgres://invalid",
	})
	require.NotNil(t, r)
}

func TestRunnerMethods_InvalidDatabaseURL(t *testing.T) {
	r := migration.NewRunner(&migration.Config{
		Source:      postgres.Migrations,
		Path:        "migrations",
		DatabaseURL: "bad://url",
		Logger:      zap.NewNop(),
	})

	assert.Error(t, r.Up())
	assert.Error(t, r.Down())
	assert.Error(t, r.Force(1))
	_, _, err := r.Version()
	assert.Error(t, err)
}

func TestRunner_MissingSource(t *testing.T) {
	r := migration.NewRunner(&migration.Config{DatabaseURL: "postgres://invalid"})
	assert.ErrorContains(t, r.Up(), "no migration source")

	r = migration.NewRunner(&migration.Config{
		Source:      fstest.MapFS{},
		Path:        "migrations",
		DatabaseURL: "postgres://invalid",
	})
	assert.ErrorContains(t, r.Up(), "migration source")
}

func TestAutoMigrate_Unreachable(t *testing.T) {
	err := migration.AutoMigrate(postgres.Migrations, "migrations", "bad://url", zap.NewNop())
	assert.Error(t, err)
}
