// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package commentcode

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for the classification pipeline.
var (
	tracer = otel.Tracer("commentcode")
	meter  = otel.Meter("commentcode")
)

var (
	batchesClassified metric.Int64Counter
	issuesEmitted     metric.Int64Counter
	classifyLatency   metric.Float64Histogram
	resourceLoadDur   metric.Float64Histogram
	cacheHitRatio     metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the package's instruments. Safe to call
// multiple times; only the first call does any work.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		batchesClassified, err = meter.Int64Counter(
			"commentcode_batches_classified_total",
			metric.WithDescription("Total comment batches run through the classification pipeline"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesEmitted, err = meter.Int64Counter(
			"commentcode_issues_emitted_total",
			metric.WithDescription("Total S125 issues emitted"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		classifyLatency, err = meter.Float64Histogram(
			"commentcode_classify_duration_seconds",
			metric.WithDescription("Duration of a single batch classification"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		resourceLoadDur, err = meter.Float64Histogram(
			"commentcode_resource_load_duration_seconds",
			metric.WithDescription("Duration of lazy pipeline resource initialization"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheHitRatio, err = meter.Float64Histogram(
			"commentcode_bpe_cache_hit_ratio",
			metric.WithDescription("Fraction of BPE encoder calls served from cache for a completed file"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startClassifySpan starts a span around one batch's classification.
func startClassifySpan(ctx context.Context, file string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "commentcode.ClassifyBatch",
		trace.WithAttributes(attribute.String("commentcode.file", file)),
	)
}

// recordClassifyMetrics records the outcome of one batch classification.
func recordClassifyMetrics(ctx context.Context, duration time.Duration, decision bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("decision", decision))
	classifyLatency.Record(ctx, duration.Seconds(), attrs)
	batchesClassified.Add(ctx, 1, attrs)
	if decision {
		issuesEmitted.Add(ctx, 1)
	}
}

// recordResourceLoad records how long lazy pipeline initialization took.
func recordResourceLoad(ctx context.Context, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	resourceLoadDur.Record(ctx, duration.Seconds())
}

// recordCacheHitRatio records the final hit ratio of a per-file BPE cache.
func recordCacheHitRatio(ctx context.Context, calls, size int) {
	if err := initMetrics(); err != nil {
		return
	}
	if calls == 0 {
		return
	}
	hits := calls - size
	cacheHitRatio.Record(ctx, float64(hits)/float64(calls))
}
