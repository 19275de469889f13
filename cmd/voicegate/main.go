// Command voicegate runs the voice authentication HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/voicegate/api"
	"github.com/skillsenselab/voicegate/auth/session"
	"github.com/skillsenselab/voicegate/config"
	"github.com/skillsenselab/voicegate/embedding"
	"github.com/skillsenselab/voicegate/embedding/ecapa"
	"github.com/skillsenselab/voicegate/logger"
	"github.com/skillsenselab/voicegate/observability"
	"github.com/skillsenselab/voicegate/server"
	"github.com/skillsenselab/voicegate/server/endpoint"
	"github.com/skillsenselab/voicegate/speaker"
	"github.com/skillsenselab/voicegate/storage/local"
	"github.com/skillsenselab/voicegate/version"
)

const serviceName = "voicegate"

func main() {
	var cfg config.AppConfig
	if err := config.Load(serviceName, &cfg); err != nil {
		logger.Error("Failed to load configuration", logger.ErrorFields("config", err))
		os.Exit(1)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", logger.ErrorFields("config", err))
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, cfg.Name)
	log.Info("Starting service", logger.Fields(
		"version", version.GetVersionInfo().Short(),
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Service exited with error", logger.ErrorFields("run", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.AppConfig, log *logger.Logger) error {
	var metrics *observability.VoiceMetrics
	if cfg.Observability.Enabled {
		tracerCfg := observability.DefaultTracerConfig(cfg.Name)
		tracerCfg.ServiceVersion = version.GetVersionInfo().Version
		tracerCfg.Environment = cfg.Environment
		tracerCfg.Endpoint = cfg.Observability.Endpoint
		tracerCfg.Insecure = cfg.Observability.Insecure
		tp, err := observability.InitTracer(ctx, tracerCfg)
		if err != nil {
			return err
		}
		defer tp.Shutdown(context.Background())

		meterCfg := observability.DefaultMeterConfig(cfg.Name)
		meterCfg.ServiceVersion = version.GetVersionInfo().Version
		meterCfg.Environment = cfg.Environment
		meterCfg.Endpoint = cfg.Observability.Endpoint
		meterCfg.Insecure = cfg.Observability.Insecure
		mp, err := observability.InitMeter(ctx, &meterCfg)
		if err != nil {
			return err
		}
		defer mp.Shutdown(context.Background())

		metrics, err = observability.NewVoiceMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return err
		}
	}

	backend, err := local.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	store := speaker.NewStore(backend, log)
	registrar := speaker.NewRegistrar(store, log)
	matcher := speaker.NewMatcher(cfg.Speaker.Threshold, log)

	extractors := embedding.NewRegistry()
	extractors.RegisterFactory(ecapa.ProviderName, ecapa.Factory())
	extractor, err := extractors.Create(ecapa.ProviderName, map[string]any{
		"base_url": cfg.Extractor.BaseURL,
		"timeout":  cfg.Extractor.Timeout,
	})
	if err != nil {
		return err
	}

	sessions, err := session.NewService(&cfg.Auth)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(cfg.Name, func(ctx context.Context) []endpoint.Check {
		check := endpoint.Check{Name: ecapa.ProviderName, Status: endpoint.StatusHealthy}
		if !extractor.IsAvailable(ctx) {
			check.Status = endpoint.StatusUnhealthy
			check.Message = "embedding sidecar unreachable"
		}
		return []endpoint.Check{check}
	})

	handler := api.NewHandler(registrar, matcher, store, extractor, sessions, metrics, log)
	handler.RegisterRoutes(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")
	return srv.Stop(context.Background())
}
