package cli

import (
	"github.com/spf13/cobra"
)

func newInitCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set the master key of a new vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Initialize(cmd.Context())
		},
	}
}

func newLoginCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Unlock the vault and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Login(cmd.Context())
		},
	}
}

func newAddCmd(app func() *App) *cobra.Command {
	var toClipboard bool

	cmd := &cobra.Command{
		Use:     "add <site>",
		Short:   "Generate and store a password for a site",
		Example: "  vaultctl add example.com --copy",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Add(cmd.Context(), args[0], toClipboard)
		},
	}
	cmd.Flags().BoolVar(&toClipboard, "copy", false, "also copy the password to the clipboard")
	return cmd
}

func newListCmd(app func() *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "show"},
		Short:   "Show all stored passwords",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().List(cmd.Context(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Lock the session and forget the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Logout(cmd.Context())
		},
	}
}

func newStatusCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the vault is initialized and unlocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Status(cmd.Context())
		},
	}
}
