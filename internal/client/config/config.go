package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// Config holds runtime settings for the notekeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the notekeeper HTTP API.
//   - SessionFile: where the session cookie value is kept between runs.
//   - CookieName: name of the server's session cookie.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string        `env:"NOTEKEEPER_CLI_SERVER_URL"`
	SessionFile    string        `env:"NOTEKEEPER_CLI_SESSION_FILE"`
	CookieName     string        `env:"NOTEKEEPER_CLI_COOKIE_NAME"`
	RequestTimeout time.Duration `env:"NOTEKEEPER_CLI_REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SessionFile = defaultSessionFile()
	c.CookieName = common.DefaultSessionCookieName
	c.RequestTimeout = 15 * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".notekeeper-session"
	}
	return filepath.Join(dir, "notekeeper", "session")
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	SessionFile    *string         `json:"session_file"`
	CookieName     *string         `json:"cookie_name"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

// Load applies defaults, then the JSON file at jsonPath (if non-empty),
// then environment variables.
func Load(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.SessionFile != nil {
		cfg.SessionFile = *jc.SessionFile
	}
	if jc.CookieName != nil {
		cfg.CookieName = *jc.CookieName
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
