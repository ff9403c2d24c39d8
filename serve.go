package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rayference/tengen/internal/logging"
	"github.com/rayference/tengen/internal/server"
	"github.com/rayference/tengen/internal/server/routes"
	"github.com/rayference/tengen/internal/version"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve data sets over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(opts)
			if err != nil {
				return err
			}
			if port > 0 {
				app.cfg.Global.ListenPort = port
			}
			listen := app.cfg.Global.ListenPort

			srv, err := server.NewApp(server.AppOptions{
				Logger:     app.logger,
				ListenPort: listen,
			})
			if err != nil {
				return err
			}
			routes.RegisterDatasetRoutes(srv, app.catalog, app.logger)
			routes.RegisterCacheRoutes(srv, app.dir)
			routes.RegisterMetricsRoute(srv, app.metrics)

			fields := logging.BaseFields("startup", opts.configPath)
			fields["listen_port"] = listen
			fields["cache_dir"] = app.dir.Root()
			fields["version"] = version.Full()
			app.logger.WithFields(fields).Info("server starting")

			go func() {
				<-cmd.Context().Done()
				_ = srv.Shutdown()
			}()
			return srv.Listen(fmt.Sprintf(":%d", listen))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default ListenPort)")
	return cmd
}
