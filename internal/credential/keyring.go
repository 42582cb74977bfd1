package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "helpdesk"

// APITokenKey is the keyring entry holding the backend bearer token.
const APITokenKey = "backend-api-token"

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = keyring.ErrKeyNotFound

// Vault keeps the console's secrets in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Open returns a Vault backed by the platform keyring, falling back to an
// encrypted file under ~/.config/helpdesk/credentials.
func Open() (*Vault, error) {
	dir := "~/.config/helpdesk/credentials"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", "helpdesk", "credentials")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("helpdesk-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return New(ring), nil
}

// Token returns the stored API token, or "" when none was saved.
func (v *Vault) Token() (string, error) {
	item, err := v.ring.Get(APITokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading API token: %w", err)
	}
	return string(item.Data), nil
}

// SetToken stores the API token. An empty token clears it.
func (v *Vault) SetToken(token string) error {
	if token == "" {
		return v.ClearToken()
	}
	err := v.ring.Set(keyring.Item{
		Key:         APITokenKey,
		Data:        []byte(token),
		Label:       "helpdesk API token",
		Description: "Bearer token for the help-desk backend",
	})
	if err != nil {
		return fmt.Errorf("saving API token: %w", err)
	}
	return nil
}

// ClearToken removes the API token. Clearing a missing token is not an
// error.
func (v *Vault) ClearToken() error {
	err := v.ring.Remove(APITokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing API token: %w", err)
	}
	return nil
}
