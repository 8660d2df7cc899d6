// Command tina-api serves the audio transcription HTTP API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/tina-api/internal/config"
	"github.com/skillsenselab/tina-api/internal/llm/azureopenai"
	"github.com/skillsenselab/tina-api/internal/media"
	"github.com/skillsenselab/tina-api/internal/observability"
	"github.com/skillsenselab/tina-api/internal/server"
	"github.com/skillsenselab/tina-api/internal/server/endpoint"
	"github.com/skillsenselab/tina-api/internal/server/middleware"
	"github.com/skillsenselab/tina-api/internal/summary"
	"github.com/skillsenselab/tina-api/internal/transcribe/azurespeech"
	"github.com/skillsenselab/tina-api/pkg/logger"
	"github.com/skillsenselab/tina-api/pkg/util"
	"github.com/skillsenselab/tina-api/pkg/version"
)

const serviceName = "tina-api"

func main() {
	envFile := flag.String("env-file", "", "path to .env file (default ./.env)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Error("failed to load configuration", logger.ErrorFields("config", err))
		os.Exit(1)
	}

	logger.Init(cfg.Logger)
	log := logger.GetGlobalLogger()
	log.Info("starting", logger.Fields(
		"service", serviceName,
		"version", version.Get().String(),
		"speech_key", util.MaskSecret(cfg.Speech.Key, 4),
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Observability, serviceName, version.Version)
		if err != nil {
			log.Error("failed to init tracer", logger.ErrorFields("observability", err))
			os.Exit(1)
		}
		defer shutdownWithTimeout(tp.Shutdown)

		mp, err := observability.InitMeter(ctx, cfg.Observability, serviceName, version.Version)
		if err != nil {
			log.Error("failed to init meter", logger.ErrorFields("observability", err))
			os.Exit(1)
		}
		defer shutdownWithTimeout(mp.Shutdown)
	}

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		log.Error("failed to create metrics", logger.ErrorFields("observability", err))
		os.Exit(1)
	}

	transcriber := azurespeech.NewProvider(cfg.Speech)
	completions := azureopenai.NewProvider(cfg.OpenAI)
	summarizer := summary.New(completions)
	normalizer := media.NewNormalizer()

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(serviceName, func(ctx context.Context) []endpoint.ComponentHealth {
		return []endpoint.ComponentHealth{
			providerHealth(transcriber.Name(), transcriber.IsAvailable(ctx)),
			providerHealth(completions.Name(), completions.IsAvailable(ctx)),
		}
	})

	authed := srv.GinEngine().Group("/", middleware.APIKey(middleware.APIKeyConfig{
		Header: cfg.Auth.Header,
		Key:    cfg.Auth.Key,
	}))
	handler := server.NewHandler(transcriber, normalizer, summarizer, cfg.TempDir, metrics)
	handler.Register(authed)

	if err := srv.Start(ctx); err != nil {
		log.Error("failed to start server", logger.ErrorFields("server", err))
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	if err := srv.Stop(context.Background()); err != nil {
		log.Error("shutdown failed", logger.ErrorFields("server", err))
		os.Exit(1)
	}
}

// providerHealth maps a provider availability check to a health entry.
// Missing credentials degrade the service instead of failing it: requests
// still complete, with sentinel transcripts or summaries.
func providerHealth(name string, available bool) endpoint.ComponentHealth {
	status := endpoint.StatusHealthy
	message := ""
	if !available {
		status = endpoint.StatusDegraded
		message = "credentials not configured"
	}
	return endpoint.ComponentHealth{Name: name, Status: status, Message: message}
}

func shutdownWithTimeout(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = fn(ctx)
}
