package container

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-task-manager-api/config"
)

func TestNewContainer_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "sqlite"

	c, err := NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), `unsupported storage driver "sqlite"`)
}

func TestNewContainer_PostgresMigrationFailure(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.DriverPostgres
	cfg.Repositories.Postgres.URL = "mysql://nope"

	c, err := NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestClose_NothingOpen(t *testing.T) {
	c := &Container{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	assert.NotPanics(t, func() { c.Close(context.Background()) })
}
