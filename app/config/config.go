package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/crudkit/authz"
	stypes "go.hackfix.me/crudkit/web/server/types"
	"go.hackfix.me/crudkit/xtime"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Server   Server
	Services Services
	// Users maps the names of users allowed to call the web API to their role
	// names.
	Users map[string][]string

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Server defines configuration options specific to the HTTP server.
type Server struct {
	// Address is the network address in [host]:port format the server will listen on.
	Address sql.Null[string] `json:"address"`
	// UserHeader is the request header set by a trusted reverse proxy with the
	// name of the authenticated user.
	UserHeader sql.Null[string] `json:"user_header"`
	// ErrorLevel is the detail level of error messages returned to clients.
	ErrorLevel sql.Null[stypes.ErrorLevel] `json:"error_level"`
}

// Services defines configuration options of the services resource.
type Services struct {
	// DefaultMaxAccessDuration is assigned to new services that don't specify one.
	// It serializes from/to xtime.Duration string values.
	DefaultMaxAccessDuration sql.Null[time.Duration] `json:"default_max_access_duration"`
	// ListLimit is the number of services returned by list calls that don't
	// specify a limit.
	ListLimit sql.Null[int] `json:"list_limit"`
}

type cfgWrapper struct {
	Server   srvCfgWrapper       `json:"server"`
	Services svcCfgWrapper       `json:"services"`
	Users    map[string][]string `json:"users,omitempty"`
}
type srvCfgWrapper struct {
	Address    string `json:"address,omitempty"`
	UserHeader string `json:"user_header,omitempty"`
	ErrorLevel string `json:"error_level,omitempty"`
}
type svcCfgWrapper struct {
	DefaultMaxAccessDuration string `json:"default_max_access_duration,omitempty"`
	ListLimit                int    `json:"list_limit,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{Users: c.Users}

	if c.Server.Address.Valid {
		w.Server.Address = c.Server.Address.V
	}
	if c.Server.UserHeader.Valid {
		w.Server.UserHeader = c.Server.UserHeader.V
	}
	if c.Server.ErrorLevel.Valid {
		w.Server.ErrorLevel = string(c.Server.ErrorLevel.V)
	}

	if c.Services.DefaultMaxAccessDuration.Valid {
		w.Services.DefaultMaxAccessDuration = xtime.FormatDuration(c.Services.DefaultMaxAccessDuration.V, time.Second)
	}
	if c.Services.ListLimit.Valid {
		w.Services.ListLimit = c.Services.ListLimit.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Server.Address != "" {
		c.Server.Address = sql.Null[string]{V: w.Server.Address, Valid: true}
	}
	if w.Server.UserHeader != "" {
		c.Server.UserHeader = sql.Null[string]{V: w.Server.UserHeader, Valid: true}
	}
	if w.Server.ErrorLevel != "" {
		lvl, err := stypes.ErrorLevelFromString(w.Server.ErrorLevel)
		if err != nil {
			return err
		}
		c.Server.ErrorLevel = sql.Null[stypes.ErrorLevel]{V: lvl, Valid: true}
	}

	if w.Services.DefaultMaxAccessDuration != "" {
		dur, err := xtime.ParseDuration(w.Services.DefaultMaxAccessDuration)
		if err != nil {
			return fmt.Errorf("failed parsing default max access duration: %w", err)
		}
		if dur < time.Second {
			return fmt.Errorf("invalid default max access duration '%s': minimum value is 1s",
				w.Services.DefaultMaxAccessDuration)
		}
		c.Services.DefaultMaxAccessDuration = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Services.ListLimit < 0 {
		return fmt.Errorf("invalid list limit %d: must not be negative", w.Services.ListLimit)
	}
	if w.Services.ListLimit > 0 {
		c.Services.ListLimit = sql.Null[int]{V: w.Services.ListLimit, Valid: true}
	}

	// Iterate in a stable order, so that errors are deterministic.
	for _, user := range slices.Sorted(maps.Keys(w.Users)) {
		if _, err := authz.RolesFromNames(w.Users[user]...); err != nil {
			return fmt.Errorf("invalid roles of user '%s': %w", user, err)
		}
	}
	c.Users = w.Users

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Server.Address.Valid {
		c.Server.Address = sql.Null[string]{V: "127.0.0.1:8080", Valid: true}
	}
	if !c.Server.UserHeader.Valid {
		c.Server.UserHeader = sql.Null[string]{V: "X-Forwarded-User", Valid: true}
	}
	if !c.Server.ErrorLevel.Valid {
		c.Server.ErrorLevel = sql.Null[stypes.ErrorLevel]{V: stypes.ErrorLevelMinimal, Valid: true}
	}
	if !c.Services.DefaultMaxAccessDuration.Valid {
		c.Services.DefaultMaxAccessDuration = sql.Null[time.Duration]{V: time.Hour, Valid: true}
	}
	if !c.Services.ListLimit.Valid {
		c.Services.ListLimit = sql.Null[int]{V: 100, Valid: true}
	}
	if c.Users == nil {
		c.Users = map[string][]string{}
	}
}
