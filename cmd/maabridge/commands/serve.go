package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/foxwhite25/maabridge/internal/config"
	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/internal/logging"
	"github.com/foxwhite25/maabridge/internal/resource"
	"github.com/foxwhite25/maabridge/internal/server"
)

var (
	servePort     int
	serveHostname string
	serveNoCORS   bool
	serveNoWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep a device connection open behind an HTTP API",
	Long: `Connect to the device and serve the connection over HTTP until
interrupted. Tasks are queued with POST /task or POST /plan and engine events
are streamed from GET /event.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addConnectFlags(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default 4096)")
	serveCmd.Flags().StringVar(&serveHostname, "hostname", "", "Hostname to listen on (default 127.0.0.1)")
	serveCmd.Flags().BoolVar(&serveNoCORS, "no-cors", false, "Disable CORS headers")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload the item index when it changes")
}

// serverConfig merges the serve flags over the configuration file.
func serverConfig(cfg *config.Config) *server.Config {
	sc := server.DefaultConfig()
	if cfg.Server.Hostname != "" {
		sc.Hostname = cfg.Server.Hostname
	}
	if cfg.Server.Port != 0 {
		sc.Port = cfg.Server.Port
	}
	if cfg.Server.CORS != nil {
		sc.EnableCORS = *cfg.Server.CORS
	}
	if serveHostname != "" {
		sc.Hostname = serveHostname
	}
	if servePort != 0 {
		sc.Port = servePort
	}
	if serveNoCORS {
		sc.EnableCORS = false
	}
	return sc
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Component("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	defer bus.Close()

	conn, err := connect(ctx, bus)
	if err != nil {
		return err
	}
	defer conn.Destroy()

	if !serveNoWatch {
		watcher, err := resource.NewWatcher(conn.Items(), afero.NewOsFs(), bus)
		if err != nil {
			log.Warn().Err(err).Msg("item index will not be reloaded")
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	srv := server.New(serverConfig(appConfig), conn, bus)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	return nil
}
