package credential

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "jira-util"

// openKeyring returns a configured keyring instance. Tests replace it with
// an in-memory keyring.
var openKeyring = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/jira-util/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("jira-util-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Key returns the keyring entry name for a user on a Jira instance, e.g.
// "jira-alice@jira.example.com". Scheme, path and letter case of the host
// do not matter.
func Key(baseURL, username string) string {
	host := strings.TrimRight(baseURL, "/")
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return "jira-" + username + "@" + strings.ToLower(host)
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
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

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       "Jira password",
		Description: "Used by jira-util pipeline actions",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// Lookup returns the password stored for username on the Jira instance at
// baseURL. It returns an empty string and no error when none is stored.
func Lookup(baseURL, username string) (string, error) {
	if baseURL == "" || username == "" {
		return "", nil
	}

	password, err := Get(Key(baseURL, username))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	return password, err
}
