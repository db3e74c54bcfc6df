package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/auth"
	"github.com/xiaot623/gogo/chatclient/internal/config"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
	"github.com/xiaot623/gogo/chatclient/internal/logging"
	"github.com/xiaot623/gogo/chatclient/internal/mock"
	"github.com/xiaot623/gogo/chatclient/internal/policy"
	"github.com/xiaot623/gogo/chatclient/internal/repository"
	"github.com/xiaot623/gogo/chatclient/internal/service"
	"github.com/xiaot623/gogo/chatclient/internal/session"
	"github.com/xiaot623/gogo/chatclient/internal/stream"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	fixtures    fixture.Store
	sessions    session.Store
	credentials *auth.FileStore
	router      *mock.Router
	svc         *service.Service

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, errOut io.Writer) (*app, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	switch cfg.FixtureSource {
	case config.FixtureSourceHTTP:
		a.fixtures = fixture.NewHTTPStore(cfg.BaseURL, cfg.FixtureRoot, cfg.HTTPTimeout)
	default:
		a.fixtures = fixture.NewEmbeddedStore()
	}

	if cfg.SessionDB != "" {
		db, err := repository.NewSQLiteStore(cfg.SessionDB, a.fixtures, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize session store: %w", err)
		}
		a.sessions = db
		a.closers = append(a.closers, db.Close)
	} else {
		a.sessions = session.NewMemoryStore(a.fixtures, logger)
	}

	a.credentials, err = auth.NewFileStore(cfg.TokenFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.router = mock.NewRouter(mock.DefaultRules(a.sessions), a.fixtures, cfg.APIPrefix, logger)

	opts := httpclient.Options{
		BaseURL:     cfg.BaseURL,
		APIPrefix:   cfg.APIPrefix,
		Timeout:     cfg.HTTPTimeout,
		Credentials: a.credentials,
		Env:         string(cfg.Env),
		Logger:      logger,
		Notifier: httpclient.NotifierFunc(func(op string, err error) {
			logger.Debug("request failed", zap.String("op", op), zap.Error(err))
			fmt.Fprintf(errOut, "warning: network error, please contact the administrator (%s)\n", op)
		}),
	}
	if cfg.IsDevelopment() {
		engine, err := policy.NewEngineFromFile(ctx, cfg.MockPolicyFile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
		}
		opts.Router = a.router
		opts.Policy = engine
	}
	client := httpclient.New(opts)

	source := stream.NewSource(cfg, client, a.fixtures, logger)
	a.svc = service.New(client, stream.NewSession(source, logger), a.credentials, logger)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
