package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-auth-client/guard"
)

func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check [path]",
		Short:        "Show the guard decision for an admin route",
		Args:         cobra.MaximumNArgs(1),
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

			path := "/admin"
			if len(args) == 1 {
				path = args[0]
			}

			g := newGuard(a, v.GetString("role"))
			printDecision(cmd.OutOrStdout(), path, g.Evaluate(a.store.Snapshot()))
			return nil
		},
	}

	cmd.Flags().String("role", "", "role required by the route, defaults to ADMIN")

	return cmd
}

func newGuard(a *app, role string) *guard.Guard {
	redirects := a.store.Redirects()

	opts := []guard.Option{
		guard.WithLogger(a.clientLogger),
		guard.WithMetrics(a.metrics),
	}
	if redirects.Login != "" {
		opts = append(opts, guard.WithLoginPath(redirects.Login))
	}
	if role != "" {
		opts = append(opts, guard.WithRequiredRole(role))
	}
	return guard.New(a.store, opts...)
}
