package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show whether a connection string is stored."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
}

type KeyringSetCmd struct {
	ConnString string `arg:"" optional:"" help:"Connection string. Prompted for when omitted."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if !keyring.Available() {
		return keyring.ErrUnavailable
	}

	connStr := c.ConnString
	if connStr == "" {
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("PostgreSQL connection string").
					EchoMode(huh.EchoModePassword).
					Value(&connStr),
			),
		).Run()
		if err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}
	if !isPostgresConnString(connStr) {
		return fmt.Errorf("%w: expected a postgres:// URL or key=value DSN", postgres.ErrInvalidConnectionString)
	}

	if err := keyring.New().Set(connStr); err != nil {
		return err
	}
	ctx.println("✓ Connection string stored in the OS keyring.")
	ctx.printf("Set `database: %s` in your config to use it.\n", KeyringSource)
	return nil
}

type KeyringGetCmd struct {
	Show bool `help:"Print the connection string with the password masked."`
}

func (c *KeyringGetCmd) Run(ctx *Context) error {
	connStr, err := keyring.New().Get()
	if errors.Is(err, keyring.ErrNotFound) {
		ctx.println("No connection string stored.")
		return nil
	}
	if err != nil {
		return err
	}
	if c.Show {
		ctx.println(maskPassword(connStr))
		return nil
	}
	ctx.println("A connection string is stored.")
	return nil
}

type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	err := keyring.New().Delete()
	if errors.Is(err, keyring.ErrNotFound) {
		ctx.println("No connection string stored.")
		return nil
	}
	if err != nil {
		return err
	}
	ctx.println("✓ Connection string removed.")
	return nil
}

func isPostgresConnString(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") || strings.Contains(s, "host=")
}

// maskPassword hides the password in a URL (user:pass@) or DSN (password=...).
func maskPassword(connStr string) string {
	if i := strings.Index(connStr, "://"); i >= 0 {
		rest := connStr[i+3:]
		at := strings.Index(rest, "@")
		colon := strings.Index(rest, ":")
		if at > 0 && colon >= 0 && colon < at {
			return connStr[:i+3] + rest[:colon+1] + "****" + rest[at:]
		}
		return connStr
	}
	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
