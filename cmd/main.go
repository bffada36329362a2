package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/iris/internal/config"
	"github.com/UnknownOlympus/iris/internal/directory"
	"github.com/UnknownOlympus/iris/internal/geocoding"
	"github.com/UnknownOlympus/iris/internal/harvest"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/output"
	"github.com/UnknownOlympus/iris/internal/repository"
	"github.com/UnknownOlympus/iris/internal/service"
	"github.com/UnknownOlympus/iris/internal/submission"
	"github.com/UnknownOlympus/iris/internal/viewstate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// geocoderRateLimit is the Google Maps request rate used to resolve centers.
const geocoderRateLimit = 10

// pinger is satisfied by the database pool.
type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	// SIGINT/SIGTERM cancel the sweep; the running cycle still joins and the final flush runs.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dirClient, err := directory.NewClient(cfg.DirectoryURL, cfg.SessionID, cfg.RateLimit, logger)
	if err != nil {
		log.Fatalf("Failed to create directory client: %v", err)
	}

	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.ProviderType),
		APIKey:    cfg.APIKey,
		RateLimit: geocoderRateLimit,
		Region:    cfg.Region,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	view, err := newViewState(ctx, cfg, geoProvider, logger)
	if err != nil {
		log.Fatalf("Failed to prepare view state: %v", err)
	}

	submitter, err := submission.NewWebhookSubmitter(submission.Config{
		URL:           cfg.Submit.URL,
		DryRun:        cfg.Debug,
		MaxRetries:    cfg.Submit.Retries,
		RetryInterval: cfg.Submit.RetryInterval,
		RateLimit:     cfg.Submit.RateLimit,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create submitter: %v", err)
	}
	if cfg.Debug {
		logger.WarnContext(ctx, "Debug mode: submissions are built and logged but never sent")
	}

	sinks := output.Multi{output.NewFileSink(cfg.OutputDir, logger)}
	if cfg.Mail.Enabled() {
		sinks = append(sinks, output.NewMailSink(output.MailConfig{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.Username,
			Password:  cfg.Mail.Password,
			FromName:  cfg.Mail.FromName,
			FromEmail: cfg.Mail.FromEmail,
			To:        cfg.Mail.To,
		}, logger))
	}

	var (
		recorder service.CycleRecorder
		health   pinger
	)
	if cfg.Database.Enabled() {
		dtb, errDB := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if errDB != nil {
			log.Fatalf("Failed to connect to DB: %v", errDB)
		}
		defer dtb.Close()

		repo := repository.NewRepository(dtb, logger)
		if errDB = repo.EnsureSchema(ctx); errDB != nil {
			log.Fatalf("Failed to prepare DB schema: %v", errDB)
		}

		sinks = append(sinks, repo)
		recorder = repo
		health = dtb
	}

	sweep := service.NewSweepService(
		logger,
		view,
		harvest.NewHarvester(logger, dirClient, appMetrics, cfg.TargetLimit),
		harvest.NewDriver(logger, submitter, appMetrics),
		sinks,
		recorder,
		appMetrics,
		service.NewPolicy(cfg.FailureThreshold),
	)

	server := startMonitoringServer(ctx, logger, reg, health, cfg.Port)

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "run_id", sweep.RunID(), "view_mode", cfg.ViewMode)

	summary := sweep.Run(ctx)

	logger.InfoContext(ctx, "Sweep complete", "run_id", summary.RunID, "cycles", summary.Cycles, "submitted", summary.Submitted)

	const shutdownTimeout = 5 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(ctx, "Failed to stop monitoring server", "error", err)
	}

	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// newViewState builds the configured source of sweep areas.
func newViewState(
	ctx context.Context,
	cfg *config.Config,
	geoProvider geocoding.Provider,
	logger *slog.Logger,
) (service.ViewState, error) {
	if cfg.ViewMode == config.ViewModePrompt {
		return viewstate.NewPrompt(os.Stdin, os.Stdout, geoProvider, cfg.Zoom, cfg.Viewport, logger), nil
	}

	centers, err := geocoding.ResolveCenters(ctx, geoProvider, cfg.Centers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sweep centers: %w", err)
	}

	logger.InfoContext(ctx, "Sweep plan ready", "centers", len(centers), "zoom", cfg.Zoom)

	return viewstate.NewPlan(centers, cfg.Zoom, cfg.Viewport, logger), nil
}

// startMonitoringServer serves health check and metrics endpoints in the
// background. db may be nil when no database is configured.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	db pinger,
	port int,
) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		status, body := http.StatusOK, "OK"
		if db != nil {
			if err := db.Ping(req.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, "DB ping failed"
			}
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		log.InfoContext(ctx, "Starting monitoring server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Monitoring server failed", "error", err)
		}
	}()

	return server
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
