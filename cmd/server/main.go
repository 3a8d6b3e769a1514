package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/api"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/config"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/ocr"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Rule files are loaded once here; a missing one is fatal.
	classifier, err := classify.NewPipeline(cfg.ClassifyOptions(), classify.Deps{Log: log})
	if err != nil {
		log.Error("loading classifier rules", "error", err)
		os.Exit(1)
	}

	parserOpts := cfg.ParserOptions(nil)
	if client, err := ocr.Open(cfg.OCRLanguage); err != nil {
		log.Info("image input disabled", "reason", err)
	} else {
		defer client.Close()
		parserOpts.OCR = client
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, classifier, parserOpts, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting dcr", "port", cfg.Port, "workers", cfg.WorkerCount, "output_dir", cfg.OutputDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
