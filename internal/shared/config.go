package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Analysis    AnalysisConfig    `toml:"analysis"`
	Strava      StravaConfig      `toml:"strava"`
	ITunes      ITunesConfig      `toml:"itunes"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Output      OutputConfig      `toml:"output"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Strava StravaCredentials `toml:"strava"`
}

// StravaCredentials contains Strava API credentials and tokens.
type StravaCredentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	RedirectURI  string `toml:"redirect_uri"`
}

// AnalysisConfig contains listen-session aggregation thresholds.
type AnalysisConfig struct {
	CompletionThreshold float64 `toml:"completion_threshold"`
	ListenThreshold     float64 `toml:"listen_threshold"`
	ToleranceMinutes    int     `toml:"tolerance_minutes"`
}

// StravaConfig contains activity fetch settings.
type StravaConfig struct {
	MaxRequests       int     `toml:"max_requests"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BufferDays        int     `toml:"buffer_days"`
}

// ITunesConfig contains iTunes Search API settings.
type ITunesConfig struct {
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	Dir  string `toml:"dir"`
}

// OutputConfig contains report output settings.
type OutputConfig struct {
	Path string `toml:"path"`
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
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidArgument)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := WriteFileAtomic(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Update copies tokens from an OAuth2 exchange into the credentials.
func (s *StravaCredentials) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", ErrInvalidArgument)
	}

	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	return nil
}

// Token converts the stored credentials into an [oauth2.Token].
func (s *StravaCredentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
}

// Validate checks that configuration values required for analysis are sane.
func (c *Config) Validate() error {
	if c.Analysis.ListenThreshold < 0 || c.Analysis.ListenThreshold > 1 {
		return fmt.Errorf("%w: listen_threshold must be within [0, 1]", ErrInvalidConfig)
	}
	if c.Analysis.ToleranceMinutes <= 0 {
		return fmt.Errorf("%w: tolerance_minutes must be positive", ErrInvalidConfig)
	}
	if c.Strava.MaxRequests < 0 {
		return fmt.Errorf("%w: max_requests must not be negative", ErrInvalidConfig)
	}
	return nil
}

// HasStravaCredentials reports whether the config carries the fields needed
// to talk to the Strava API.
func (c *Config) HasStravaCredentials() bool {
	s := c.Credentials.Strava
	return s.ClientID != "" && s.ClientSecret != ""
}
