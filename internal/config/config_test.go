package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32ch"

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "LEASEDESK_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "LEASEDESK_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "LEASEDESK_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "LEASEDESK_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			assert.Equal(t, tc.want, getEnv(tc.key, tc.fallback))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "LEASEDESK_TEST_INT_UNSET", fallback: 42, want: 42},
		{name: "parses valid int", key: "LEASEDESK_TEST_INT_VALID", setVal: strPtr("8080"), want: 8080},
		{name: "parses negative int", key: "LEASEDESK_TEST_INT_NEG", setVal: strPtr("-1"), want: -1},
		{name: "returns fallback for empty string", key: "LEASEDESK_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "LEASEDESK_TEST_INT_NAN", setVal: strPtr("abc"), wantErr: true},
		{name: "errors on float", key: "LEASEDESK_TEST_INT_FLOAT", setVal: strPtr("3.14"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("LEASEDESK_TEST_FLOAT", "2.5")
	got, err := getEnvFloat("LEASEDESK_TEST_FLOAT", 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got, 1e-9)

	got, err = getEnvFloat("LEASEDESK_TEST_FLOAT_UNSET", 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)

	t.Setenv("LEASEDESK_TEST_FLOAT_BAD", "fast")
	_, err = getEnvFloat("LEASEDESK_TEST_FLOAT_BAD", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEASEDESK_TEST_FLOAT_BAD")
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", fallback: true, want: true},
		{name: "parses true", setVal: strPtr("true"), want: true},
		{name: "parses 0", setVal: strPtr("0"), fallback: true, want: false},
		{name: "errors on invalid", setVal: strPtr("yes"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := "LEASEDESK_TEST_BOOL"
			if tc.setVal != nil {
				t.Setenv(key, *tc.setVal)
			}

			got, err := getEnvBool(key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("LEASEDESK_TEST_DUR", "1h30m")
	got, err := getEnvDuration("LEASEDESK_TEST_DUR", 0)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, got)

	t.Setenv("LEASEDESK_TEST_DUR_BARE", "30")
	_, err = getEnvDuration("LEASEDESK_TEST_DUR_BARE", 0)
	require.Error(t, err)
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("LEASEDESK_TEST_LIST", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvList("LEASEDESK_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, getEnvList("LEASEDESK_TEST_LIST_UNSET", []string{"x"}))
}

// ---------------------------------------------------------------------------
// Load() error paths
// ---------------------------------------------------------------------------

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("LEASEDESK_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEASEDESK_JWT_SECRET")
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	t.Setenv("LEASEDESK_JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
	}{
		{name: "DB_PORT not a number", envKey: "LEASEDESK_DB_PORT", envVal: "abc"},
		{name: "DB_PORT too high", envKey: "LEASEDESK_DB_PORT", envVal: "65536"},
		{name: "DB_MAX_CONNS zero", envKey: "LEASEDESK_DB_MAX_CONNS", envVal: "0"},
		{name: "JWT_TTL zero", envKey: "LEASEDESK_JWT_TTL", envVal: "0s"},
		{name: "JWT_TTL invalid", envKey: "LEASEDESK_JWT_TTL", envVal: "soon"},
		{name: "SESSION_TTL negative", envKey: "LEASEDESK_SESSION_TTL", envVal: "-1h"},
		{name: "COOKIE_SECURE not a bool", envKey: "LEASEDESK_COOKIE_SECURE", envVal: "yes"},
		{name: "SERVER_READ_TIMEOUT zero", envKey: "LEASEDESK_SERVER_READ_TIMEOUT", envVal: "0s"},
		{name: "SERVER_SHUTDOWN_TIMEOUT invalid", envKey: "LEASEDESK_SERVER_SHUTDOWN_TIMEOUT", envVal: "later"},
		{name: "REDIS_DB not a number", envKey: "LEASEDESK_REDIS_DB", envVal: "abc"},
		{name: "STORE unknown", envKey: "LEASEDESK_STORE", envVal: "mysql"},
		{name: "SESSION_STORE unknown", envKey: "LEASEDESK_SESSION_STORE", envVal: "cookie"},
		{name: "LOG_FORMAT unknown", envKey: "LEASEDESK_LOG_FORMAT", envVal: "xml"},
		{name: "LOG_LEVEL unknown", envKey: "LEASEDESK_LOG_LEVEL", envVal: "loud"},
		{name: "RATE_LIMIT_RPS zero", envKey: "LEASEDESK_RATE_LIMIT_RPS", envVal: "0"},
		{name: "AUTH_RATE_LIMIT_BURST zero", envKey: "LEASEDESK_AUTH_RATE_LIMIT_BURST", envVal: "0"},
		{name: "AUTO_MIGRATE not a bool", envKey: "LEASEDESK_AUTO_MIGRATE", envVal: "sometimes"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LEASEDESK_JWT_SECRET", testSecret)
			t.Setenv(tc.envKey, tc.envVal)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.envKey)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	// Only the required JWT secret is set; everything else uses defaults.
	t.Setenv("LEASEDESK_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "leasedesk", cfg.Database.User)
	assert.Equal(t, "leasedesk_dev", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, SessionDriverRedis, cfg.Session.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 100.0, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, 10, cfg.RateLimit.AuthBurst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, StoreDriverPostgres, cfg.Store)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoad_CustomValues(t *testing.T) {
	envs := map[string]string{
		"LEASEDESK_JWT_SECRET":     testSecret,
		"LEASEDESK_DB_HOST":        "db.prod.internal",
		"LEASEDESK_DB_PORT":        "5433",
		"LEASEDESK_DB_PASSWORD":    "s3cret!",
		"LEASEDESK_DB_SSLMODE":     "require",
		"LEASEDESK_REDIS_DB":       "3",
		"LEASEDESK_JWT_TTL":        "2h",
		"LEASEDESK_SESSION_STORE":  "memory",
		"LEASEDESK_COOKIE_SECURE":  "true",
		"LEASEDESK_CORS_ORIGINS":   "https://app.example.com",
		"LEASEDESK_RATE_LIMIT_RPS": "12.5",
		"LEASEDESK_LOG_FORMAT":     "text",
		"LEASEDESK_LOG_LEVEL":      "debug",
		"LEASEDESK_STORE":          "memory",
		"LEASEDESK_AUTO_MIGRATE":   "true",
	}
	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.prod.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, SessionDriverMemory, cfg.Session.Driver)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 12.5, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, StoreDriverMemory, cfg.Store)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"LEASEDESK_JWT_SECRET="+testSecret+"\nLEASEDESK_SERVER_ADDR=:7070\nLEASEDESK_DB_NAME=from_file\n",
	), 0o600))
	t.Chdir(dir)

	// Environment wins over the file.
	t.Setenv("LEASEDESK_DB_NAME", "from_env")
	// Registered so the value loaded from .env is unset after the test.
	t.Setenv("LEASEDESK_JWT_SECRET", "")
	t.Setenv("LEASEDESK_SERVER_ADDR", "")
	require.NoError(t, os.Unsetenv("LEASEDESK_JWT_SECRET"))
	require.NoError(t, os.Unsetenv("LEASEDESK_SERVER_ADDR"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "from_env", cfg.Database.DBName)
}

func TestDSN(t *testing.T) {
	t.Parallel()

	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=require", c.DSN())
}
