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
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// telemetryOptions configures setupTelemetry beyond the exporter name
// itself. OTLPEndpoint and PrometheusPort are only consulted when the
// matching exporter is selected.
type telemetryOptions struct {
	TraceExporter  string
	MetricExporter string
	OTLPEndpoint   string
	PrometheusPort int
}

// setupTelemetry wires the global OTel tracer/meter providers according to
// the configured exporters. "none" (the default for a field left empty)
// leaves the no-op global providers in place, matching OpenTelemetry's own
// default-safe behavior when nothing is configured.
//
// Supported values: TraceExporter is "stdout", "otlp", or "none";
// MetricExporter is "stdout", "prometheus", or "none". Prometheus metrics
// are served over HTTP on PrometheusPort for the lifetime of the process,
// which only makes sense for a long-running "scan --watch" invocation; a
// one-shot scan shuts the listener down before anything could scrape it.
func setupTelemetry(opts telemetryOptions) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var firstErr error
		for _, fn := range shutdownFuncs {
			if err := fn(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	if opts.TraceExporter != "" && opts.TraceExporter != "none" {
		tp, err := newTracerProvider(opts)
		if err != nil {
			return nil, err
		}
		otel.SetTracerProvider(tp)
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	}

	if opts.MetricExporter != "" && opts.MetricExporter != "none" {
		mp, srv, err := newMeterProvider(opts)
		if err != nil {
			return nil, err
		}
		otel.SetMeterProvider(mp)
		shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
		if srv != nil {
			shutdownFuncs = append(shutdownFuncs, srv.Shutdown)
		}
	}

	return shutdown, nil
}

func newTracerProvider(opts telemetryOptions) (*sdktrace.TracerProvider, error) {
	switch opts.TraceExporter {
	case "otlp":
		exporter, err := otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(opts.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", opts.TraceExporter)
	}
}

// newMeterProvider returns the configured MeterProvider and, for the
// Prometheus exporter, the *http.Server serving /metrics (nil otherwise).
func newMeterProvider(opts telemetryOptions) (*sdkmetric.MeterProvider, *http.Server, error) {
	switch opts.MetricExporter {
	case "prometheus":
		exporter, err := promexporter.New()
		if err != nil {
			return nil, nil, fmt.Errorf("prometheus metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", opts.PrometheusPort), Handler: mux}
		go func() { _ = srv.ListenAndServe() }()

		return mp, srv, nil
	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("stdout metric exporter: %w", err)
		}
		reader := sdkmetric.NewPeriodicReader(exporter)
		return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown metric exporter %q", opts.MetricExporter)
	}
}
