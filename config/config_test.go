package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-posts/config"
)

func TestLoad_DefaultsRequireSigningKey(t *testing.T) {
	_, err := config.Load("", nil)
	require.Error(t, err)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("POSTS_AUTH__SIGNING_KEY", "0123456789abcdef0123")
	t.Setenv("POSTS_SERVER__API_PREFIX", "/v1")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "0123456789abcdef0123", cfg.GetAuth().GetSigningKey())
	assert.Equal(t, "/v1", cfg.GetServer().GetAPIPrefix())
	assert.Equal(t, 100, cfg.GetAuth().GetTokenExpiration())
	assert.Equal(t, "header:x-auth-token", cfg.GetAuth().GetTokenLookup())
	assert.Equal(t, 5*time.Second, cfg.GetPersistence().GetStoreTimeout())
}

func TestLoad_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yml")
	content := []byte(`
auth:
  signing_key: file-secret-0123456789
  token_expiration: 2
server:
  address: ":8080"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--server.address=:9090"}))

	cfg, err := config.Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "file-secret-0123456789", cfg.Auth.SigningKey)
	assert.Equal(t, 2, cfg.Auth.TokenExpiration)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
}

func TestLoad_ConfigPathFromFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"auth":{"signing_key":"json-secret-0123456789"}}`), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path}))

	cfg, err := config.Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "json-secret-0123456789", cfg.Auth.SigningKey)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "app.ini"), nil)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.Error(t, err)
}

func TestLoad_JSONNumbersAndDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	content := []byte(`{
		"auth": {"signing_key": "json-secret-0123456789", "token_expiration": 12, "audience": ["web", "mobile"]},
		"server": {"login_rate_window": "30s"},
		"persistence": {"store_timeout": "250ms", "max_open_conns": 4}
	}`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Auth.TokenExpiration)
	assert.Equal(t, []string{"web", "mobile"}, cfg.Auth.Audience)
	assert.Equal(t, 30*time.Second, cfg.Server.LoginRateWindow)
	assert.Equal(t, 250*time.Millisecond, cfg.Persistence.StoreTimeout)
	assert.Equal(t, 4, cfg.Persistence.MaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.toml")
	content := []byte(`
[auth]
signing_key = "toml-secret-0123456789"

[persistence]
driver = "postgres"
dsn = "postgres://posts@localhost/posts"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "toml-secret-0123456789", cfg.Auth.SigningKey)
	assert.Equal(t, "postgres", cfg.Persistence.GetDriver())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  signing_key: file-secret-0123456789\n"), 0o600))

	t.Setenv("POSTS_AUTH__SIGNING_KEY", "env-secret-0123456789")
	t.Setenv("POSTS_PERSISTENCE__STORE_TIMEOUT", "2s")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "env-secret-0123456789", cfg.Auth.SigningKey)
	assert.Equal(t, 2*time.Second, cfg.Persistence.GetStoreTimeout())
}

func TestValidate(t *testing.T) {
	cfg := config.Defaults()
	cfg.Auth.SigningKey = "short"
	assert.Error(t, cfg.Validate())

	cfg.Auth.SigningKey = "long-enough-secret-key"
	assert.NoError(t, cfg.Validate())

	cfg.Auth.SigningMethod = "RS256"
	assert.Error(t, cfg.Validate())
}

func TestValidatePersistenceDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.Auth.SigningKey = "long-enough-secret-key"

	cfg.Persistence.Driver = "postgres"
	assert.NoError(t, cfg.Validate())

	cfg.Persistence.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}
