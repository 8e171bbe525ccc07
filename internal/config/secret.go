package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// KeyringUser is the keyring account the shared secret is stored under.
const KeyringUser = "shared-key"

// KeySource names where the shared secret was found.
type KeySource string

const (
	KeyFromConfig  KeySource = "config"
	KeyFromEnv     KeySource = "env"
	KeyFromKeyring KeySource = "keyring"
	KeyNone        KeySource = "none"
)

// LoadDotenv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotenv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// ResolveKey finds the shared secret: the config file value, then the
// environment variable named by KeyEnv, then the OS keyring. An empty key with
// KeyNone is not an error; the endpoint may not need one.
func (c Config) ResolveKey() (string, KeySource, error) {
	if c.Key != "" {
		return c.Key, KeyFromConfig, nil
	}
	if c.KeyEnv != "" {
		if v := strings.TrimSpace(os.Getenv(c.KeyEnv)); v != "" {
			return v, KeyFromEnv, nil
		}
	}
	if c.KeyringService == "" {
		return "", KeyNone, nil
	}
	secret, err := keyring.Get(c.KeyringService, KeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", KeyNone, nil
		}
		return "", KeyNone, fmt.Errorf("read keyring: %w", err)
	}
	return secret, KeyFromKeyring, nil
}

// StoreKey saves secret in the OS keyring.
func (c Config) StoreKey(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("key is empty")
	}
	if err := keyring.Set(c.keyringService(), KeyringUser, secret); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// DeleteKey removes the secret from the OS keyring. Deleting a missing key is
// not an error.
func (c Config) DeleteKey() error {
	if err := keyring.Delete(c.keyringService(), KeyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}

func (c Config) keyringService() string {
	return orDefault(c.KeyringService, defaultKeyringService)
}

// DotenvPath returns the per-user .env file next to the config file.
func DotenvPath(configPath string) string {
	resolved, err := resolvePath(configPath)
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(resolved), ".env")
}
