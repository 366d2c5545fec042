package config

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stypes "go.hackfix.me/crudkit/web/server/types"
)

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		exp    Config
		expErr string
	}{
		{
			name: "ok/empty",
			data: "",
			exp:  Config{},
		},
		{
			name: "ok/full",
			data: `{
				"server": {"address": ":9000", "user_header": "X-User", "error_level": "Full"},
				"services": {"default_max_access_duration": "1d", "list_limit": 20},
				"users": {"alice": ["admin", "viewer"]}
			}`,
			exp: Config{
				Server: Server{
					Address:    sql.Null[string]{V: ":9000", Valid: true},
					UserHeader: sql.Null[string]{V: "X-User", Valid: true},
					ErrorLevel: sql.Null[stypes.ErrorLevel]{V: stypes.ErrorLevelFull, Valid: true},
				},
				Services: Services{
					DefaultMaxAccessDuration: sql.Null[time.Duration]{V: 24 * time.Hour, Valid: true},
					ListLimit:                sql.Null[int]{V: 20, Valid: true},
				},
				Users: map[string][]string{"alice": {"admin", "viewer"}},
			},
		},
		{
			name:   "err/error_level",
			data:   `{"server": {"error_level": "verbose"}}`,
			expErr: "failed parsing configuration file: invalid error level 'verbose'",
		},
		{
			name:   "err/duration",
			data:   `{"services": {"default_max_access_duration": "10ms"}}`,
			expErr: "failed parsing configuration file: invalid default max access duration '10ms': minimum value is 1s",
		},
		{
			name:   "err/list_limit",
			data:   `{"services": {"list_limit": -1}}`,
			expErr: "failed parsing configuration file: invalid list limit -1: must not be negative",
		},
		{
			name:   "err/role",
			data:   `{"users": {"bob": ["viewer"], "alice": ["root"]}}`,
			expErr: "failed parsing configuration file: invalid roles of user 'alice': unknown role 'root'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := memoryfs.New()
			if tt.data != "" {
				require.NoError(t, vfs.WriteFile(fs, "/config.json", []byte(tt.data), 0o644))
			}

			cfg := NewConfig(fs, "/config.json")
			err := cfg.Load()
			if tt.expErr != "" {
				require.EqualError(t, err, tt.expErr)
				return
			}
			require.NoError(t, err)

			tt.exp.fs, tt.exp.path = fs, "/config.json"
			assert.Equal(t, &tt.exp, cfg)
		})
	}
}

func TestConfigSaveDefaults(t *testing.T) {
	t.Parallel()

	fs := memoryfs.New()
	cfg := NewConfig(fs, "/etc/crudkit/config.json")
	cfg.SetDefaults()
	cfg.Users["alice"] = []string{"admin"}
	require.NoError(t, cfg.Save())

	data, err := vfs.ReadFile(fs, "/etc/crudkit/config.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"server": {
			"address": "127.0.0.1:8080",
			"user_header": "X-Forwarded-User",
			"error_level": "minimal"
		},
		"services": {"default_max_access_duration": "1h", "list_limit": 100},
		"users": {"alice": ["admin"]}
	}`, string(data))

	loaded := NewConfig(fs, "/etc/crudkit/config.json")
	require.NoError(t, loaded.Load())
	assert.Equal(t, cfg, loaded)
}
