// Package keyring keeps the Postgres connection string in the OS keyring so
// that credentials never have to live in the config file.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/routinely/internal/constants"
)

var (
	ErrNotFound    = errors.New("no connection string stored in keyring")
	ErrUnavailable = errors.New("OS keyring is not available")
)

// Credentials reads and writes one secret under a service/account pair.
type Credentials struct {
	service string
	account string
}

// New returns credentials for the default routinely account.
func New() Credentials {
	return Credentials{service: constants.AppName, account: constants.DefaultKeyringUser}
}

// ForAccount returns credentials stored under a different account name,
// which lets several databases be kept side by side.
func ForAccount(account string) Credentials {
	if account == "" {
		return New()
	}
	return Credentials{service: constants.AppName, account: account}
}

func (c Credentials) Account() string { return c.account }

// Get returns the stored connection string.
func (c Credentials) Get() (string, error) {
	connStr, err := gokeyring.Get(c.service, c.account)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return connStr, nil
}

func (c Credentials) Set(connStr string) error {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := gokeyring.Set(c.service, c.account, connStr); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	return nil
}

func (c Credentials) Delete() error {
	if err := gokeyring.Delete(c.service, c.account); err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	return nil
}

// Available probes the keyring with a read. A missing entry still counts
// as available.
func Available() bool {
	_, err := gokeyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}
