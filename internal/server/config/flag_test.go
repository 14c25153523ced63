package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:8081", "-g", ":6000", "-m", ":9191", "-store", "buntdb",
				"-d", "db", "-bunt", ":memory:", "-s", "secret",
				"-t", "60", "-o", "5", "-r", "30", "-mailer", "smtp", "-redis", "redis://r:6379/0", "-log", "logfmt",
			},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:8081",
				EndpointAddrGRPC:             ":6000",
				AdminAddr:                    ":9191",
				StoreDriver:                  "buntdb",
				DatabaseDSN:                  "db",
				BuntPath:                     ":memory:",
				SecretKey:                    "secret",
				SessionTokenValidityDuration: time.Hour,
				OTPValidityDuration:          5 * time.Minute,
				ResetTokenValidityDuration:   30 * time.Minute,
				Mailer:                       "smtp",
				RedisURL:                     "redis://r:6379/0",
				LogFormat:                    "logfmt",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{
				EndpointAddrHTTP: ":1",
			},
		},
		{
			name:        "bad minutes value",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
