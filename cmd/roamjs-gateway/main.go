package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/roamjs/gateway/pkg/api"
	"github.com/roamjs/gateway/pkg/auth"
	"github.com/roamjs/gateway/pkg/awsutil"
	"github.com/roamjs/gateway/pkg/billing"
	"github.com/roamjs/gateway/pkg/config"
	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/notify"
	"github.com/roamjs/gateway/pkg/observability"
	"github.com/roamjs/gateway/pkg/registry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(observability.ParseLevel(cfg.Observability.LogLevel), os.Stdout)
	logger.Info("Starting RoamJS gateway")

	ctx := context.Background()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	otelMetrics, err := observability.NewOTelMetrics()
	if err != nil {
		logger.Fatalf("Failed to create OpenTelemetry instruments: %v", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(promRegistry)

	awsCfg, err := awsutil.LoadConfig(ctx, awsutil.Options{
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
		Endpoint:  cfg.AWS.Endpoint,
	})
	if err != nil {
		logger.Fatalf("Failed to load AWS configuration: %v", err)
	}

	store := registry.NewDynamoStore(awsCfg, registry.Tables{
		Production:  cfg.Registry.Table,
		Development: cfg.Registry.DevTable,
		OwnerIndex:  cfg.Registry.OwnerIndex,
	})
	dir := directory.NewClerkDirectory(cfg.Directory.APIKey, cfg.Directory.DevAPIKey, logger)
	verifier := auth.NewVerifier(dir, auth.Keyring{
		Production:  cfg.Encryption.Secret,
		Development: cfg.Encryption.DevSecret,
	})
	reconciler := billing.NewReconciler(store, billing.Providers{
		Production:  billing.NewStripeProvider(cfg.Billing.SecretKey),
		Development: billing.NewStripeProvider(cfg.Billing.DevSecretKey),
	}, nil)
	notifier := notify.NewSESNotifier(awsCfg, cfg.Notify.From, cfg.Notify.To)

	health := observability.NewHealthChecker(cfg.Observability.OTelServiceVersion)
	health.AddCritical("registry", store)

	srv := api.NewServer(api.Config{
		Verifier:      verifier,
		Directory:     dir,
		Store:         store,
		Billing:       reconciler,
		Notifier:      notifier,
		Logger:        logger,
		Metrics:       metrics,
		OTel:          otelMetrics,
		Health:        health,
		Registry:      promRegistry,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(providers.Shutdown)

	go func() {
		defer observability.RecoverPanic(logger, "http server")
		logger.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown completed with errors")
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}
