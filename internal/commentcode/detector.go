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

	"github.com/AleutianAI/commentcode/pkg/logging"
)

// DefaultThreshold is the decision threshold used with the bundled model.
const DefaultThreshold = 0.83

// DefaultMaxTokens bounds how many tokens the feature extractor looks at.
const DefaultMaxTokens = 500

// pipelineState holds the lazily-initialized, process-wide immutable
// artifacts: ranks, vocabulary and model parameters never change once
// loaded, so every Detector in a process can share one pipelineState.
type pipelineState struct {
	resources *Resources
	model     *Model
}

var (
	sharedState     *pipelineState
	sharedStateOnce sync.Once
	sharedStateErr  error
)

func loadSharedState(ctx context.Context, log *logging.Logger, threshold float64, resourcesDir string) (*pipelineState, error) {
	sharedStateOnce.Do(func() {
		start := time.Now()
		var resources *Resources
		var err error
		if resourcesDir != "" {
			resources, err = LoadResourcesFromDir(resourcesDir)
		} else {
			resources, err = LoadEmbeddedResources()
		}
		if err != nil {
			sharedStateErr = err
			return
		}
		recordResourceLoad(ctx, time.Since(start))
		log.ResourceLoad(resources.Vocab.Size(), len(resources.Model.Coefficients), time.Since(start))
		sharedState = &pipelineState{
			resources: resources,
			model:     NewModel(resources.Model, threshold),
		}
	})
	return sharedState, sharedStateErr
}

// Detector is the glue component: for each comment batch it journals,
// strips, tokenizes, extracts features, predicts, and conditionally
// emits an issue. One Detector should be used per file; its BPE cache is
// not safe for concurrent use (see §5 of the design).
type Detector struct {
	file    string
	log     *logging.Logger
	journal CommentJournal
	sink    IssueSink

	state     *pipelineState
	tokenizer *RoBERTaTokenizer
	extractor *FeatureExtractor
	encoder   *CachingBpeEncoder
}

// NewDetector builds a Detector for one file, lazily loading the shared
// pipeline resources on first construction (not per call). resourcesDir,
// if non-empty, overrides the embedded merges.txt/vocab.json/model.json
// with files loaded from that directory; it is only consulted on the
// very first call, since resource loading is process-wide.
func NewDetector(ctx context.Context, file string, journal CommentJournal, sink IssueSink, log *logging.Logger, threshold float64, maxTokens int, resourcesDir string) (*Detector, error) {
	if log == nil {
		log = logging.Default()
	}
	state, err := loadSharedState(ctx, log, threshold, resourcesDir)
	if err != nil {
		return nil, err
	}
	encoder := NewCachingBpeEncoder(NewBpeEncoder(state.resources.Ranks))
	return &Detector{
		file:      file,
		log:       log,
		journal:   journal,
		sink:      sink,
		state:     state,
		tokenizer: NewRoBERTaTokenizer(encoder),
		extractor: NewFeatureExtractor(state.resources.Vocab, maxTokens),
		encoder:   encoder,
	}, nil
}

// Detect runs the pipeline over one syntax token's trivia, grouping it into
// batches and classifying each. It returns the issues emitted, in trivia
// order.
func (d *Detector) Detect(ctx context.Context, trivia []Trivium) ([]Issue, error) {
	batches := GroupTrivia(trivia)
	var issues []Issue

	for _, batch := range batches {
		issue, err := d.classifyBatch(ctx, batch)
		if err != nil {
			return issues, err
		}
		if issue != nil {
			issues = append(issues, *issue)
		}
	}

	recordCacheHitRatio(ctx, d.encoder.Calls(), d.encoder.Size())
	return issues, nil
}

// classifyBatch journals a batch unconditionally, the way the host
// contract's captureComment call does before any stripping, tokenizing
// or prediction is attempted: the batch's span and raw text are fixed
// before the fallible steps run, and the journal write is deferred so it
// fires on every exit path, including an early return from StripSigns or
// Tokenize. Decision and Sigmoid stay at their zero values if prediction
// never completes.
func (d *Detector) classifyBatch(ctx context.Context, batch CommentBatch) (*Issue, error) {
	ctx, span := startClassifySpan(ctx, d.file)
	defer span.End()
	start := time.Now()

	raw := batch.RawText()
	startPos, endPos := batch.Span()
	span0 := TextSpan{
		StartLine:   startPos.Line,
		StartColumn: startPos.Column - 1,
		EndLine:     endPos.Line,
		EndColumn:   endPos.Column - 1,
	}

	var decision bool
	var sigmoid float64
	if d.journal != nil {
		defer func() {
			d.journal.Record(JournalEntry{
				Span:     span0,
				RawText:  raw,
				Decision: decision,
				Sigmoid:  sigmoid,
			})
		}()
	}

	stripped, err := StripSigns(batch.Kind, raw)
	if err != nil {
		return nil, err
	}

	tokens, err := d.tokenizer.Tokenize(stripped)
	if err != nil {
		return nil, err
	}

	features := d.extractor.Extract(tokens)
	prediction, err := d.state.model.Predict(features)
	if err != nil {
		return nil, err
	}
	decision = prediction.Decision
	sigmoid = prediction.Sigmoid

	recordClassifyMetrics(ctx, time.Since(start), decision)
	d.log.BatchClassified(d.file, span0.StartLine, span0.StartColumn, decision, sigmoid)

	if !decision {
		return nil, nil
	}

	issue := Issue{
		RuleKey: RuleKey,
		File:    d.file,
		Span:    span0,
		Message: IssueMessage,
		Cost:    0,
	}
	if d.sink != nil {
		if err := d.sink.Report(issue); err != nil {
			return nil, err
		}
	}
	d.log.IssueEmitted(d.file, span0.StartLine, span0.StartColumn)
	return &issue, nil
}
