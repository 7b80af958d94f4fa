package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "refresh",
		Short:        "Exchange the refresh token for a new access token",
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

			session, err := a.store.RefreshTokens(cmd.Context())
			if err != nil {
				printSession(cmd.OutOrStdout(), a.store.Snapshot())
				return errors.Wrap(err, "failed to refresh tokens")
			}

			printSession(cmd.OutOrStdout(), session)
			return nil
		},
	}

	return cmd
}
