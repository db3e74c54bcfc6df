package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/config"
	"github.com/xiaot623/gogo/chatclient/internal/stream"
	handler "github.com/xiaot623/gogo/chatclient/internal/transport/http"
)

type serveFlags struct {
	port int
}

func newServeMockCommand(rt *runtime) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve-mock",
		Short: "Run the mock backend as an HTTP server",
		Long: `Serve the mock API, the scripted chat stream and the raw fixtures over
HTTP, so a production-mode client can be pointed at it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeMock(cmd, rt, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to listen on (defaults to CHATCLIENT_MOCK_PORT)")
	return cmd
}

func runServeMock(cmd *cobra.Command, rt *runtime, flags *serveFlags) error {
	// The server is its own fixture source.
	rt.cfg.FixtureSource = config.FixtureSourceEmbedded
	a, err := rt.wire(cmd)
	if err != nil {
		return err
	}
	logger := a.logger

	port := flags.port
	if port == 0 {
		port = rt.cfg.MockPort
	}

	source := stream.NewScriptedSource(a.fixtures, stream.ScriptedOptions{
		Startup:  rt.cfg.StreamStartup,
		Interval: rt.cfg.StreamInterval,
		Logger:   logger,
	})
	h := handler.NewHandler(a.router, source, a.fixtures, rt.cfg.APIPrefix, rt.cfg.FixtureRoot, logger)
	server := handler.NewMockServer(h, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info("mock server started", zap.String("addr", addr))
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start mock server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down mock server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown mock server gracefully", zap.Error(err))
	}
	return nil
}
