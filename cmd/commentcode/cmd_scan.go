// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/commentcode/internal/commentcode"
	"github.com/AleutianAI/commentcode/internal/sourcescan"
	"github.com/AleutianAI/commentcode/pkg/commentcodeconfig"
	"github.com/AleutianAI/commentcode/pkg/logging"
)

// # Description
//
// scan walks one or more files or directories, runs every ".go" file it
// finds through the commentcode detector, and reports issues.
//
// # Examples
//
//	commentcode scan ./internal
//	commentcode scan --format json main.go
//	commentcode scan --threshold 0.9 --watch ./cmd
//
// # Limitations
//
// Only Go source files are scanned; the bundled trivia extractor is
// tree-sitter's Go grammar. Watch mode re-scans a changed file in full; it
// does not diff comment batches.
//
// # Assumptions
//
// Paths are assumed to be UTF-8 Go source under the caller's control;
// vendored or generated files are not filtered out automatically.
var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Scan files or directories for commented-out code",
	RunE:  runScan,
}

var (
	flagConfig            string
	flagFormat            string
	flagEmitJournal       bool
	flagWatch             bool
	flagThresholdOverride float64
	flagMaxTokensOverride int
	flagResourcesDir      string
	flagLogLevel          string
	flagLogFile           string
	flagTraceExporter     string
	flagMetricExporter    string
	flagOTLPEndpoint      string
	flagPrometheusPort    int
)

func init() {
	scanCmd.Flags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	scanCmd.Flags().StringVar(&flagFormat, "format", "text", "output format: text or json")
	scanCmd.Flags().BoolVar(&flagEmitJournal, "emit-journal", false, "also print journal entries for every batch")
	scanCmd.Flags().BoolVar(&flagWatch, "watch", false, "re-scan a file when it changes")
	scanCmd.Flags().Float64Var(&flagThresholdOverride, "threshold", 0, "override the model decision threshold")
	scanCmd.Flags().IntVar(&flagMaxTokensOverride, "max-tokens", 0, "override the feature extractor's token cap")
	scanCmd.Flags().StringVar(&flagResourcesDir, "resources", "", "directory overriding the embedded merges.txt/vocab.json/model.json")
	scanCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn, or error")
	scanCmd.Flags().StringVar(&flagLogFile, "log-file", "", "directory for JSON log output, in addition to stderr")
	scanCmd.Flags().StringVar(&flagTraceExporter, "trace-exporter", "", "stdout, otlp, or none")
	scanCmd.Flags().StringVar(&flagMetricExporter, "metric-exporter", "", "stdout, prometheus, or none")
	scanCmd.Flags().StringVar(&flagOTLPEndpoint, "otlp-endpoint", "", "OTLP collector gRPC endpoint, used when --trace-exporter=otlp")
	scanCmd.Flags().IntVar(&flagPrometheusPort, "prometheus-port", 0, "port for the /metrics endpoint, used when --metric-exporter=prometheus (meaningful only with --watch)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("scan requires at least one path")
	}

	cfg, err := commentcodeconfig.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagThresholdOverride != 0 {
		cfg.Threshold = flagThresholdOverride
	}
	if flagMaxTokensOverride != 0 {
		cfg.MaxTokens = flagMaxTokensOverride
	}
	if flagResourcesDir != "" {
		cfg.ResourcesDir = flagResourcesDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if flagTraceExporter != "" {
		cfg.TraceExporter = flagTraceExporter
	}
	if flagMetricExporter != "" {
		cfg.MetricExporter = flagMetricExporter
	}
	if flagOTLPEndpoint != "" {
		cfg.OTLPEndpoint = flagOTLPEndpoint
	}
	if flagPrometheusPort != 0 {
		cfg.PrometheusPort = flagPrometheusPort
	}

	log := logging.New(logging.Config{
		Level:   parseLogLevel(cfg.LogLevel),
		LogDir:  cfg.LogFile,
		Service: "commentcode",
	})
	defer log.Close()

	shutdownTelemetry, err := setupTelemetry(telemetryOptions{
		TraceExporter:  cfg.TraceExporter,
		MetricExporter: cfg.MetricExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		PrometheusPort: cfg.PrometheusPort,
	})
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	files, err := collectGoFiles(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sink := sourcescan.NewMemorySink()
	journal := sourcescan.NewMemoryJournal()

	if err := scanAll(ctx, files, sink, journal, log, cfg); err != nil {
		return dispatchFatal(err, log)
	}

	printReport(sink, journal)

	if flagWatch {
		return watchAndRescan(ctx, files, sink, journal, log, cfg)
	}

	if len(sink.Issues()) > 0 {
		os.Exit(1)
	}
	return nil
}

// scanAll runs one Detector per file concurrently, bounded to GOMAXPROCS
// workers. Each worker gets its own Detector (and BPE cache); all workers
// read the same immutable shared resources, loaded once (under sync.Once)
// by whichever worker constructs its Detector first.
func scanAll(ctx context.Context, files []string, sink *sourcescan.MemorySink, journal *sourcescan.MemoryJournal, log *logging.Logger, cfg commentcodeconfig.Config) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, file := range files {
		file := file
		g.Go(func() error {
			return scanOne(gctx, file, sink, journal, log, cfg)
		})
	}
	return g.Wait()
}

func scanOne(ctx context.Context, file string, sink *sourcescan.MemorySink, journal *sourcescan.MemoryJournal, log *logging.Logger, cfg commentcodeconfig.Config) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	token, err := sourcescan.ExtractTrivia(ctx, content)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	if len(token.Trivia) == 0 {
		return nil
	}

	detector, err := commentcode.NewDetector(ctx, file, journal, sink, log, cfg.Threshold, cfg.MaxTokens, cfg.ResourcesDir)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if _, err := detector.Detect(ctx, token.Trivia); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}

func collectGoFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".go" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func printReport(sink *sourcescan.MemorySink, journal *sourcescan.MemoryJournal) {
	issues := sink.Issues()
	if flagFormat == "json" {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]any{
			"issues":  issues,
			"journal": journalOrNil(journal),
		})
		return
	}
	for _, issue := range issues {
		fmt.Println(sourcescan.FormatText(issue))
	}
	if flagEmitJournal {
		for _, entry := range journal.Entries() {
			fmt.Printf("journal: %d:%d decision=%v sigmoid=%.4f\n",
				entry.Span.StartLine, entry.Span.StartColumn, entry.Decision, entry.Sigmoid)
		}
	}
}

func journalOrNil(journal *sourcescan.MemoryJournal) any {
	if !flagEmitJournal {
		return nil
	}
	return journal.Entries()
}

// dispatchFatal maps the three fatal sentinel errors onto exit code 2;
// any other error is returned unchanged so Cobra prints it and exits
// non-zero through its own path.
func dispatchFatal(err error, log *logging.Logger) error {
	switch {
	case errors.Is(err, commentcode.ErrResourceLoadFailure),
		errors.Is(err, commentcode.ErrUnrecognizedCommentPrefix),
		errors.Is(err, commentcode.ErrShapeMismatch):
		log.Error("fatal pipeline error", "error", err.Error())
		os.Exit(2)
	}
	return err
}

func watchAndRescan(ctx context.Context, files []string, sink *sourcescan.MemorySink, journal *sourcescan.MemoryJournal, log *logging.Logger, cfg commentcodeconfig.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, f := range files {
		if err := watcher.Add(f); err != nil {
			log.Warn("could not watch file", "file", f, "error", err.Error())
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Info("rescanning changed file", "file", event.Name)
			if err := scanOne(ctx, event.Name, sink, journal, log, cfg); err != nil {
				log.Error("rescan failed", "file", event.Name, "error", err.Error())
				continue
			}
			printReport(sink, journal)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", werr.Error())
		}
	}
}

func parseLogLevel(level string) logging.Level {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
