package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, "data/powerbill.db", cfg.Database.Path)
	require.Equal(t, "http://localhost", cfg.Cors.Origin)
	require.Equal(t, "powerbill_session", cfg.Session.CookieName)
	require.Equal(t, 30, cfg.Session.TTLMinutes)
	require.False(t, cfg.Session.SecureCookie)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POWERBILL_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("POWERBILL_CORS_ORIGIN", "https://billing.example.com")
	t.Setenv("POWERBILL_SESSION_SECURECOOKIE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	require.Equal(t, "https://billing.example.com", cfg.Cors.Origin)
	require.True(t, cfg.Session.SecureCookie)
}
