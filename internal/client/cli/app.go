// Package cli implements vaultctl, the terminal client of the vault.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sitevault/internal/client/client"
	"github.com/dmitrijs2005/sitevault/internal/client/config"
	"github.com/dmitrijs2005/sitevault/internal/common"
)

type App struct {
	config *config.Config
	client *client.Client
	out    io.Writer
	errOut io.Writer
}

func NewApp(cfg *config.Config, out, errOut io.Writer) (*App, error) {
	c := client.New(cfg.ServerURL, cfg.Timeout)

	token, err := client.LoadToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	c.SetToken(token)

	return &App{config: cfg, client: c, out: out, errOut: errOut}, nil
}

// explain turns API errors into messages for the terminal.
func explain(err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return errors.New("not logged in, run 'vaultctl login' first")
	case errors.Is(err, common.ErrNotInitialized):
		return errors.New("vault is not initialized, run 'vaultctl init' first")
	case errors.Is(err, common.ErrAlreadyInitialized):
		return errors.New("master key already initialized")
	case errors.Is(err, common.ErrInvalidCredentials):
		return errors.New("invalid master key")
	case errors.Is(err, common.ErrInvalidSite):
		return errors.New("invalid URL")
	case errors.Is(err, common.ErrEmptyKey):
		return errors.New("master key is required")
	case errors.Is(err, client.ErrUnavailable):
		return errors.New("server unavailable")
	default:
		return err
	}
}

func (a *App) Initialize(ctx context.Context) error {
	key, err := GetPassword(a.errOut, "Master key: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	again, err := GetPassword(a.errOut, "Repeat master key: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if string(key) != string(again) {
		return errors.New("master keys do not match")
	}

	if err := a.client.Initialize(ctx, key); err != nil {
		return explain(err)
	}

	printSuccess(a.out, "Master key initialized")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	key, err := GetPassword(a.errOut, "Master key: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	if err := a.client.Login(ctx, key); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			_ = client.RemoveToken(a.config.TokenFile)
		}
		return explain(err)
	}

	if err := client.SaveToken(a.config.TokenFile, a.client.Token()); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}

	printSuccess(a.out, "Login successful")
	return nil
}

// Add generates a password for site and prints it. With toClipboard set the
// password also goes to the system clipboard.
func (a *App) Add(ctx context.Context, site string, toClipboard bool) error {
	pw, err := a.client.AddPassword(ctx, site)
	if err != nil {
		return explain(err)
	}

	fmt.Fprintln(a.out, pw)

	if toClipboard {
		if err := writeClipboard(pw); err != nil {
			printError(a.errOut, "clipboard: %v", err)
		} else {
			printInfo(a.errOut, "Password copied to clipboard")
		}
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	if rmErr := client.RemoveToken(a.config.TokenFile); rmErr != nil {
		return rmErr
	}
	if err != nil {
		return explain(err)
	}

	printSuccess(a.out, "Logged out")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.client.Status(ctx)
	if err != nil {
		return explain(err)
	}
	printStatus(a.out, st)
	return nil
}
