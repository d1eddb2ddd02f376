package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the config file.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvAppURL       = "APP_URL"
	EnvPort         = "PORT"
	EnvLogLevel     = "LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
}

// SpotifyConfig contains Spotify API credentials and the public URL of the app.
//
// AuthURL, TokenURL and APIBaseURL are empty in normal use; they point the
// client at another accounts or API host.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AppURL       string `toml:"app_url"`
	AuthURL      string `toml:"auth_url,omitempty"`
	TokenURL     string `toml:"token_url,omitempty"`
	APIBaseURL   string `toml:"api_base_url,omitempty"`
}

// RedirectURI is the app URL without a trailing slash. The authorize request
// and the token exchange must send the same value.
func (c SpotifyConfig) RedirectURI() string {
	return strings.TrimRight(c.AppURL, "/")
}

// Validate reports whether the credentials needed for the OAuth flow are present.
func (c SpotifyConfig) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.AppURL == "" {
		missing = append(missing, "app_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: spotify %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	u, err := url.Parse(c.AppURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: app_url %q is not an absolute URL", ErrInvalidConfig, c.AppURL)
	}
	return nil
}

// CallbackAddr returns the host:port the app URL points at.
//
// The CLI login listens there for the redirect.
func (c SpotifyConfig) CallbackAddr() (string, error) {
	u, err := url.Parse(c.RedirectURI())
	if err != nil {
		return "", fmt.Errorf("%w: app_url: %v", ErrInvalidConfig, err)
	}
	host, port := u.Hostname(), u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(host, port), nil
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	SecureCookies  bool     `toml:"secure_cookies"`
}

// Addr returns the listen address for the server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SessionConfig locates the session file used by the CLI and TUI.
type SessionConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
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

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration to path, replacing any existing file.
func SaveConfig(config *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) into the process environment. Missing files are ignored and existing
// variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}

	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("%w: failed to load env file: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto the config. lookup is usually [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvClientID); ok && v != "" {
		c.Spotify.ClientID = v
	}
	if v, ok := lookup(EnvClientSecret); ok && v != "" {
		c.Spotify.ClientSecret = v
	}
	if v, ok := lookup(EnvAppURL); ok && v != "" {
		c.Spotify.AppURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvPort, v)
		}
		c.Server.Port = port
	}
	return nil
}
