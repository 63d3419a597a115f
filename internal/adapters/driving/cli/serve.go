package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikidex/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/wikidex/internal/logger"
)

// shutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Slack trigger endpoints",
	Long: `Starts an HTTP server exposing the Slack slash command and events
endpoints so imports can be triggered from chat. Requests are verified
against the Slack signing secret.`,
	RunE: runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	app, err := ensureServices()
	if err != nil {
		return err
	}
	defer app.close()

	opts := []httpapi.Option{
		httpapi.WithSigningSecret(app.cfg.Slack.SigningSecret),
		httpapi.WithSignatureSkip(app.cfg.Slack.SkipVerify),
	}
	if notifier != nil {
		opts = append(opts, httpapi.WithNotifier(notifier))
	}
	api := httpapi.New(syncRunner, opts...)

	server := &http.Server{
		Addr:              app.cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
