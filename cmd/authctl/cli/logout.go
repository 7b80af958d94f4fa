package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func LogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "logout",
		Short:        "End the session",
		Long:         `Call the logout endpoint and clear the stored session. The local session is cleared even when the backend call fails.`,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.store.LoggedIn() {
				printSession(cmd.OutOrStdout(), a.store.Snapshot())
				return nil
			}

			if err := a.store.Logout(cmd.Context()); err != nil {
				a.logger.Warn("backend logout failed", zap.Error(err))
			}

			green.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}

	return cmd
}
