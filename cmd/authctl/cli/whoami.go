package cli

import (
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func WhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "whoami",
		Short:        "Print the stored session and user",
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			if v.GetBool("fetch") && a.store.LoggedIn() {
				if _, err := a.store.FetchUser(cmd.Context()); err != nil {
					return errors.Wrap(err, "failed to fetch user")
				}
			}

			session := a.store.Snapshot()
			printSession(cmd.OutOrStdout(), session)

			if session.User != nil {
				fmt.Fprintln(cmd.OutOrStdout(), print.MaybePrettyJSON(session.User))
			}
			return nil
		},
	}

	cmd.Flags().Bool("fetch", false, "reload the user from the backend first")

	return cmd
}
