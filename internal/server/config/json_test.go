package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":              ":8443",
		"store_driver":                    "buntdb",
		"bunt_path":                       "auth.db",
		"secret_key":                      "my_secret_key",
		"session_token_validity_duration": "2h",
		"otp_validity_duration":           "5m",
		"bcrypt_cost":                     12,
		"mailer":                          "ses",
		"smtp_port":                       2525,
		"frontend_url":                    "https://app.example.com",
		"otp_rate_window":                 60000000000,
	})

	t.Run("loads from json and keeps absent keys", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":8443", cfg.EndpointAddrHTTP)
		assert.Equal(t, StoreBunt, cfg.StoreDriver)
		assert.Equal(t, "auth.db", cfg.BuntPath)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.SessionTokenValidityDuration)
		assert.Equal(t, 5*time.Minute, cfg.OTPValidityDuration)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, MailerSES, cfg.Mailer)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
		assert.Equal(t, time.Minute, cfg.OTPRateWindow)

		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, time.Hour, cfg.ResetTokenValidityDuration)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
