package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("SOCKET_REQUEST_TIMEOUT_SECONDS", "")
	t.Setenv("SOCKET_LIST_LOAD_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.Socket.RequestTimeout())
	require.Equal(t, 30*time.Second, cfg.Socket.ListLoadTimeout())
	require.Equal(t, "hr-console:broadcast", cfg.Redis.BroadcastChannel)
	require.True(t, cfg.Postgres.RunMigrations)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SOCKET_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("SOCKET_LIST_LOAD_TIMEOUT_SECONDS", "")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.App.Port)
	require.Equal(t, 5*time.Second, cfg.Socket.RequestTimeout())
	require.Equal(t, 5*time.Second, cfg.Socket.ListLoadTimeout())
	require.EqualValues(t, 10, cfg.Postgres.MaxConns)
	require.False(t, cfg.Postgres.RunMigrations)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	require.Error(t, err)
}

func TestAppConfig_Location(t *testing.T) {
	require.Equal(t, time.UTC, AppConfig{Timezone: "Nowhere/Invalid"}.Location())
	require.Equal(t, "UTC", AppConfig{Timezone: "UTC"}.Location().String())
}

func TestSocketListLoadTimeout(t *testing.T) {
	s := SocketConfig{RequestTimeoutSeconds: 30, ListLoadTimeoutSeconds: 10}
	require.Equal(t, 10*time.Second, s.ListLoadTimeout())

	s.ListLoadTimeoutSeconds = 0
	require.Equal(t, 30*time.Second, s.ListLoadTimeout())

	s.ListLoadTimeoutSeconds = 90
	require.Equal(t, 30*time.Second, s.ListLoadTimeout())
}
