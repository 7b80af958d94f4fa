package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/goliatone/go-auth-client/devproxy"
)

func ProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Serve the SPA and proxy API calls to the backend",
		Long: `Run the development server. Paths from the proxy table are forwarded upstream and everything else is served from the static directory.

With --guard-prefix the pages under the prefix are gated on the session stored by
"authctl login", the operator's own session. Browser sessions are not inspected.`,
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

			opts := devproxy.Options{
				Routes:      a.cfg.Proxy,
				StaticDir:   v.GetString("static"),
				Transport:   authclient.BaseTransport(a.cfg),
				GuardPrefix: v.GetString("guard-prefix"),
				Logger:      a.clientLogger,
			}
			if opts.GuardPrefix != "" {
				opts.Guard = newGuard(a, "")
			}
			if a.cfg.Metrics.Enabled {
				opts.Gatherer = a.registry
				opts.MetricsPath = a.cfg.Metrics.Path
			}

			engine, err := devproxy.New(opts)
			if err != nil {
				return errors.Wrap(err, "failed to build proxy")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := v.GetString("addr")
			a.logger.Info("proxy listening", zap.String("addr", addr), zap.Int("routes", len(opts.Routes)))

			return devproxy.Serve(ctx, addr, engine)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("static", "dist", "directory with the built SPA")
	cmd.Flags().String("guard-prefix", "", "SPA path prefix gated on the operator's stored admin session, e.g. /admin")

	return cmd
}
