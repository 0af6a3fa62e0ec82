package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-catalog/internal/bundle"
	"media-catalog/internal/derive"
	"media-catalog/internal/handlers"
	"media-catalog/internal/importer"
	"media-catalog/internal/layout"
	"media-catalog/internal/logging"
	"media-catalog/internal/memory"
	"media-catalog/internal/metrics"
	"media-catalog/internal/middleware"
	"media-catalog/internal/record"
	"media-catalog/internal/startup"
	"media-catalog/internal/transcode"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const statsInterval = 30 * time.Second

func main() {
	startTime := time.Now()

	// Heap limit first, before anything allocates
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize the library tree
	lay := layout.New(config.LibraryDir)
	if err := lay.Initialize(); err != nil {
		startup.LogFatal("Failed to initialize library: %v", err)
	}

	// libvips backs the decode fallback for formats the Go decoders
	// cannot read (HEIC, AVIF)
	if err := derive.InitVips(); err != nil {
		logging.Warn("libvips unavailable, decode fallback disabled: %v", err)
	}
	defer derive.ShutdownVips()

	// Metadata store with deferred artifact cleanup
	janitor := record.NewJanitor()
	store := record.NewStore(lay, nil, janitor)

	// External tool plumbing
	startup.LogToolsInit(config.EncoderPath, config.ProbePath)
	adapter := transcode.NewAdapter(config.EncoderPath, config.VolNormClause)
	prober := transcode.NewProber(config.ProbePath)
	sampler := transcode.NewFrameSampler(config.EncoderPath, config.SampleTemplate)

	// The three importers behind one dispatcher
	importerConfig := config.ImporterConfig()
	dispatcher := importer.NewDispatcher(
		importer.NewImageImporter(store, adapter, importerConfig),
		importer.NewAudioImporter(store, adapter, prober, importerConfig),
		importer.NewVideoImporter(store, adapter, prober, sampler, importerConfig),
	)

	// Bundle and raw transfer providers
	packages := bundle.NewProvider(store, nil)
	raw := bundle.NewRawProvider(lay, dispatcher)

	// Catalog gauge collector
	collector := metrics.NewCollector(store, statsInterval)
	collector.Start()

	// Setup router
	h := handlers.New(store, dispatcher, packages, raw)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	startup.LogHTTPRoutes(router)

	// Middleware: metrics innermost, then logging, then compression
	metricsConfig := middleware.DefaultMetricsConfig()
	instrumented := middleware.Metrics(metricsConfig)(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(instrumented)

	handler := middleware.Compression(middleware.DefaultCompressionConfig())(logged)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Separate metrics listener so scrapes never compete with uploads
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, janitor)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, janitor *record.Janitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping stats collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Stats collector stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	// Artifacts whose deletion failed earlier get one last attempt
	startup.LogShutdownStep("Flushing deferred deletions")
	janitor.Flush()
	startup.LogShutdownStepComplete("Deferred deletions flushed")

	startup.LogShutdownComplete()
}
