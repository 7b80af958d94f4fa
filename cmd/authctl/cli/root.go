package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Manage an admin session against the auth backend",
		Long: `Log in, refresh and inspect the admin session used by the SPA,
check route guard decisions and run the development proxy.`,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
	}

	cmd.PersistentFlags().String("config", "", "path to the YAML config file")
	cmd.PersistentFlags().String("env-config", "", "path to an environment overlay config file")
	cmd.PersistentFlags().String("env", "", "environment to use (development|production)")
	cmd.PersistentFlags().String("store", "", "session persistence driver (memory|redis|sqlite)")
	cmd.PersistentFlags().String("dsn", "", "session persistence DSN")
	cmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(LoginCmd())
	cmd.AddCommand(LogoutCmd())
	cmd.AddCommand(RefreshCmd())
	cmd.AddCommand(WhoamiCmd())
	cmd.AddCommand(CheckCmd())
	cmd.AddCommand(GetCmd())
	cmd.AddCommand(ProxyCmd())
	cmd.AddCommand(VersionCmd())

	viper.BindPFlags(cmd.PersistentFlags())

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return cmd
}

func init() {
	cobra.OnInitialize(initConfig)
}

func InitAndExecute() {
	if err := RootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("AUTHCTL")
	viper.AutomaticEnv()
}
