package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/shin2080/asset-selector-http-api/internal/config"
	"github.com/shin2080/asset-selector-http-api/internal/dam"
	httptransport "github.com/shin2080/asset-selector-http-api/internal/http"
	"github.com/shin2080/asset-selector-http-api/internal/http/handler"
	"github.com/shin2080/asset-selector-http-api/internal/ims"
	"github.com/shin2080/asset-selector-http-api/internal/server"
	"github.com/shin2080/asset-selector-http-api/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newExchanger,
			ims.NewIssuer,
			newDAMClient,
			handler.NewProxyHandler,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

// newExchanger points the issuer at this process's own relay route, so
// server-side token issuing exercises the same path browsers use.
func newExchanger(cfg config.Config, logger *zap.Logger) *ims.Exchanger {
	relayURL := fmt.Sprintf("http://127.0.0.1:%s/ims/exchange", cfg.HTTPPort)
	return ims.NewExchanger(relayURL, cfg.UpstreamTimeout, logger)
}

func newDAMClient(cfg config.Config, logger *zap.Logger) *dam.Client {
	return dam.NewClient(cfg.DAMHost, cfg.DAMAPIKey, cfg.UpstreamTimeout, logger)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
