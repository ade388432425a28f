package session

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "chatdeck"

// tokenKey is the keyring entry holding the backend access token.
const tokenKey = "access-token"

// EnvToken is the environment variable that overrides the stored token.
const EnvToken = "CHATDECK_TOKEN"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/chatdeck/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("chatdeck-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token returns the backend access token, preferring the CHATDECK_TOKEN
// environment variable over the system keyring. An empty string means
// the user has not signed in yet.
func Token() string {
	if token := os.Getenv(EnvToken); token != "" {
		return token
	}
	token, err := get(tokenKey)
	if err != nil {
		return ""
	}
	return token
}

// SaveToken stores the access token in the system keyring.
func SaveToken(token string) error {
	return set(tokenKey, token)
}

// ClearToken removes the stored access token. Used on sign-out.
func ClearToken() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(tokenKey); err != nil {
		return fmt.Errorf("deleting credential %q: %w", tokenKey, err)
	}
	return nil
}

// get retrieves a credential value by key from the system keyring.
func get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// set stores a credential value by key in the system keyring.
func set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}
