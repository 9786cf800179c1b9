package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	Backend   string
	ServerURL string
	Token     string
	TokenFile string
	RedisURL  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Backend:   getEnvOrDefault("TEKMIZ_BACKEND", "rest"),
		ServerURL: getEnvOrDefault("TEKMIZ_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("TEKMIZ_TOKEN"),
		TokenFile: getEnvOrDefault("TEKMIZ_TOKEN_FILE", defaultTokenFile()),
		RedisURL:  os.Getenv("TEKMIZ_REDIS_URL"),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = string(data)
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

// ClearToken removes the persisted token
func (c *Config) ClearToken() error {
	c.Token = ""
	err := os.Remove(c.TokenFile)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tekmiz/token"
	}
	return filepath.Join(home, ".tekmiz", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
