package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/fal"
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/gateway"
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/infra"
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/session"
)

// falJobClient adapts the concrete queue client to the interface the session
// machine consumes. The machine takes its client at construction; there is no
// ambient shared instance.
type falJobClient struct {
	client *fal.Client
}

func (f falJobClient) Subscribe(ctx context.Context, prompt string) (session.JobStream, error) {
	return f.client.Subscribe(ctx, prompt)
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	falClient := fal.NewClient(fal.Options{
		BaseURL:      cfg.FalBaseURL,
		APIKey:       cfg.FalAPIKey,
		Model:        cfg.FalModel,
		PollInterval: cfg.FalPollInterval,
		Logger:       &logger,
	})

	machine := session.New(falJobClient{client: falClient}, logger)
	go machine.Run(ctx)

	app := gateway.NewApp(machine, logger, cfg.CORSAllowedOrigins)
	router := gateway.NewRouter(app, logger, cfg.CORSAllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("gateway listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("studio stopped")
}
