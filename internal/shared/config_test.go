package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Spotify.AppURL != "http://localhost:3000" {
			t.Errorf("expected app_url http://localhost:3000, got %s", config.Spotify.AppURL)
		}

		if config.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Spotify.ClientID)
		}

		if config.Log.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Log.Level)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Session.Path != defaultConfig.Session.Path {
			t.Errorf("created config session path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("overrides defaults", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")

			testConfig := `[server]
host = "0.0.0.0"
port = 8080

[spotify]
client_id = "test_client_id"
client_secret = "test_secret"
app_url = "https://slate.example.com/"
`
			if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if config.Server.Port != 8080 {
				t.Errorf("expected server port 8080, got %d", config.Server.Port)
			}

			if config.Spotify.ClientID != "test_client_id" {
				t.Errorf("expected spotify client_id test_client_id, got %s", config.Spotify.ClientID)
			}

			if got := config.Spotify.RedirectURI(); got != "https://slate.example.com" {
				t.Errorf("expected trailing slash trimmed, got %s", got)
			}

			if config.Log.Level != "info" {
				t.Errorf("missing keys should keep defaults, got log level %q", config.Log.Level)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("invalid toml", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte("[spotify\nclient_id ="), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Spotify.ClientID = "saved"
		config.Server.AllowedOrigins = []string{"https://a.example", "https://b.example"}

		if err := SaveConfig(config, configPath); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Spotify.ClientID != "saved" {
			t.Errorf("expected client_id saved, got %s", loaded.Spotify.ClientID)
		}
		if len(loaded.Server.AllowedOrigins) != 2 {
			t.Errorf("expected 2 allowed origins, got %v", loaded.Server.AllowedOrigins)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			EnvClientID:     "env_id",
			EnvClientSecret: "env_secret",
			EnvAppURL:       "https://env.example.com",
			EnvPort:         "4000",
		}
		lookup := func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}

		config := DefaultConfig()
		if err := config.ApplyEnv(lookup); err != nil {
			t.Fatalf("ApplyEnv failed: %v", err)
		}

		if config.Spotify.ClientID != "env_id" || config.Spotify.ClientSecret != "env_secret" {
			t.Errorf("credentials not overridden: %+v", config.Spotify)
		}
		if config.Spotify.AppURL != "https://env.example.com" {
			t.Errorf("expected app url from env, got %s", config.Spotify.AppURL)
		}
		if config.Server.Port != 4000 {
			t.Errorf("expected port 4000, got %d", config.Server.Port)
		}

		t.Run("invalid port", func(t *testing.T) {
			env[EnvPort] = "not-a-port"
			if err := DefaultConfig().ApplyEnv(lookup); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("LoadDotEnv", func(t *testing.T) {
		t.Run("missing file is ignored", func(t *testing.T) {
			if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
				t.Errorf("expected nil, got %v", err)
			}
		})

		t.Run("loads variables", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			if err := os.WriteFile(path, []byte("SOUNDSLATE_TEST_VALUE=from-dotenv\n"), 0644); err != nil {
				t.Fatalf("failed to write env file: %v", err)
			}
			t.Cleanup(func() { os.Unsetenv("SOUNDSLATE_TEST_VALUE") })

			if err := LoadDotEnv(path); err != nil {
				t.Fatalf("LoadDotEnv failed: %v", err)
			}
			if got := os.Getenv("SOUNDSLATE_TEST_VALUE"); got != "from-dotenv" {
				t.Errorf("expected from-dotenv, got %q", got)
			}
		})
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name string
			cfg  SpotifyConfig
			want error
		}{
			{name: "complete", cfg: SpotifyConfig{ClientID: "id", ClientSecret: "s", AppURL: "http://localhost:3000"}},
			{name: "missing secret", cfg: SpotifyConfig{ClientID: "id", AppURL: "http://localhost:3000"}, want: ErrMissingCredentials},
			{name: "relative app url", cfg: SpotifyConfig{ClientID: "id", ClientSecret: "s", AppURL: "localhost"}, want: ErrInvalidConfig},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.cfg.Validate()
				if tt.want == nil && err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				if tt.want != nil && !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("CallbackAddr", func(t *testing.T) {
		tc := []struct {
			appURL string
			want   string
		}{
			{"http://localhost:3000/", "localhost:3000"},
			{"http://127.0.0.1", "127.0.0.1:80"},
			{"https://slate.example.com", "slate.example.com:443"},
		}
		for _, tt := range tc {
			got, err := SpotifyConfig{AppURL: tt.appURL}.CallbackAddr()
			if err != nil {
				t.Fatalf("CallbackAddr(%s) failed: %v", tt.appURL, err)
			}
			if got != tt.want {
				t.Errorf("CallbackAddr(%s) = %s, want %s", tt.appURL, got, tt.want)
			}
		}
	})
}
