package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	// DefaultPort is the listen port used when neither the config file nor the
	// PORT environment variable selects one.
	DefaultPort = 8888

	// DatabaseFilename is the SQLite file created inside the data directory.
	DatabaseFilename = "stockmind.db"
)

// Config represents the application configuration loaded from a TOML file,
// optionally overridden by environment variables (see [ApplyEnv]).
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Agent       AgentConfig       `toml:"agent"`
}

// CredentialsConfig contains credentials for external services.
type CredentialsConfig struct {
	Anthropic AnthropicConfig `toml:"anthropic"`
	Twitter   TwitterConfig   `toml:"twitter"`
}

// AnthropicConfig contains Anthropic API credentials and model selection.
type AnthropicConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// TwitterConfig contains X (Twitter) API credentials for trade notifications.
// Posting is disabled unless Enabled is set and all four credentials are present.
type TwitterConfig struct {
	Enabled           bool   `toml:"enabled"`
	APIKey            string `toml:"api_key"`
	APISecret         string `toml:"api_secret"`
	AccessToken       string `toml:"access_token"`
	AccessTokenSecret string `toml:"access_token_secret"`
}

// DatabaseConfig contains persistent storage settings.
//
// DataDir is the directory holding the SQLite file. It is provisioned with an
// ensure-exists contract at startup and is expected to be volume-mounted in
// container deployments so the database survives restarts.
type DatabaseConfig struct {
	DataDir      string `toml:"data_dir"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	FreshStart   bool   `toml:"fresh_start"`
}

// ServerConfig contains HTTP server settings.
//
// DashboardURL is the public address of the dashboard, appended to outbound
// notifications. Leave it empty when the service has no public URL.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	DashboardURL string `toml:"dashboard_url"`
}

// AgentConfig contains agent scheduling and portfolio bootstrap settings.
type AgentConfig struct {
	Timezone        string  `toml:"timezone"`
	StartingBalance float64 `toml:"starting_balance"`
	StartupDelaySec int     `toml:"startup_delay_seconds"`
}

// envOverrides mirrors the environment variables recognized at process start.
//
// Values are captured as strings so validation (and its error reporting)
// happens in [ApplyEnv] rather than inside the parser.
type envOverrides struct {
	Port              string `env:"PORT"`
	DashboardURL      string `env:"DASHBOARD_URL"`
	DataDir           string `env:"DATA_DIR"`
	StartingBalance   string `env:"STARTING_BALANCE"`
	FreshStart        string `env:"FRESH_START"`
	Timezone          string `env:"TIMEZONE"`
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY"`
	TwitterEnabled    string `env:"TWITTER_ENABLED"`
	TwitterAPIKey     string `env:"TWITTER_API_KEY"`
	TwitterAPISecret  string `env:"TWITTER_API_SECRET"`
	TwitterToken      string `env:"TWITTER_ACCESS_TOKEN"`
	TwitterSecret     string `env:"TWITTER_ACCESS_TOKEN_SECRET"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values from the process environment.
//
// Overrides are read once at startup; nothing reads the environment after
// bootstrap. An invalid PORT or STARTING_BALANCE is a fatal configuration
// error so that bootstrap fails before any listening socket is created.
func ApplyEnv(config *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if overrides.Port != "" {
		port, err := ParsePort(overrides.Port)
		if err != nil {
			return err
		}
		config.Server.Port = port
	}
	if overrides.DashboardURL != "" {
		config.Server.DashboardURL = overrides.DashboardURL
	}
	if overrides.DataDir != "" {
		config.Database.DataDir = overrides.DataDir
	}
	if overrides.StartingBalance != "" {
		balance, err := strconv.ParseFloat(overrides.StartingBalance, 64)
		if err != nil || balance < 0 {
			return fmt.Errorf("%w: STARTING_BALANCE %q", ErrInvalidConfig, overrides.StartingBalance)
		}
		config.Agent.StartingBalance = balance
	}
	if overrides.FreshStart != "" {
		config.Database.FreshStart = Truthy(overrides.FreshStart)
	}
	if overrides.Timezone != "" {
		config.Agent.Timezone = overrides.Timezone
	}
	if overrides.AnthropicAPIKey != "" {
		config.Credentials.Anthropic.APIKey = overrides.AnthropicAPIKey
	}
	if overrides.TwitterEnabled != "" {
		config.Credentials.Twitter.Enabled = Truthy(overrides.TwitterEnabled)
	}
	if overrides.TwitterAPIKey != "" {
		config.Credentials.Twitter.APIKey = overrides.TwitterAPIKey
	}
	if overrides.TwitterAPISecret != "" {
		config.Credentials.Twitter.APISecret = overrides.TwitterAPISecret
	}
	if overrides.TwitterToken != "" {
		config.Credentials.Twitter.AccessToken = overrides.TwitterToken
	}
	if overrides.TwitterSecret != "" {
		config.Credentials.Twitter.AccessTokenSecret = overrides.TwitterSecret
	}

	return nil
}

// ParsePort parses a TCP port from a string, rejecting non-numeric and
// out-of-range values.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidPort, raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: %d out of range 1-65535", ErrInvalidPort, port)
	}
	return port, nil
}

// Truthy reports whether an environment flag value means "on".
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// DatabasePath returns the full path of the SQLite file inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Database.DataDir, DatabaseFilename)
}

// Addr returns the host:port address the server binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Location resolves the configured agent timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Agent.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Agent.Timezone, err)
	}
	return loc, nil
}
