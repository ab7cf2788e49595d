package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the vaultctl command tree.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath   string
		serverURL string
		tokenFile string
		timeout   time.Duration
		app       *App
	)

	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Terminal client for the SiteVault password vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.ServerURL = serverURL
			}
			if flags.Changed("token-file") {
				cfg.TokenFile = tokenFile
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}

			app, err = NewApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "path to a JSON config file")
	pf.StringVarP(&serverURL, "server", "s", "", "vault server URL")
	pf.StringVar(&tokenFile, "token-file", "", "file that keeps the session token")
	pf.DurationVar(&timeout, "timeout", 0, "request timeout")

	getApp := func() *App { return app }

	root.AddCommand(
		newInitCmd(getApp),
		newLoginCmd(getApp),
		newAddCmd(getApp),
		newListCmd(getApp),
		newLogoutCmd(getApp),
		newStatusCmd(getApp),
	)
	return root
}

// Execute runs vaultctl and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), "%v", err)
		return 1
	}
	return 0
}
