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

import "strings"

// Vocabulary is an ordered set of strings materialized from vocab.json,
// with an index lookup by token.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// NewVocabulary builds a Vocabulary from an ordered token list.
func NewVocabulary(tokens []string) *Vocabulary {
	index := make(map[string]int, len(tokens))
	for i, t := range tokens {
		index[t] = i
	}
	return &Vocabulary{tokens: tokens, index: index}
}

// Size returns the number of distinct vocabulary entries.
func (v *Vocabulary) Size() int { return len(v.tokens) }

// IndexOf returns the token's feature index and whether it was found.
func (v *Vocabulary) IndexOf(token string) (int, bool) {
	idx, ok := v.index[token]
	return idx, ok
}

// FeatureExtractor turns a token array into a fixed-length feature vector:
// bag-of-vocabulary counts over the first min(len(tokens), MaxTokens)
// tokens, followed by the semicolon count and semicolon frequency over
// that same prefix.
type FeatureExtractor struct {
	Vocab     *Vocabulary
	MaxTokens int
}

// NewFeatureExtractor builds an extractor producing vectors of length
// vocab.Size()+2.
func NewFeatureExtractor(vocab *Vocabulary, maxTokens int) *FeatureExtractor {
	return &FeatureExtractor{Vocab: vocab, MaxTokens: maxTokens}
}

// Extract produces the feature vector for tokens. If tokens is empty the
// semicolon-frequency component is NaN (0/0); callers guarantee non-empty
// token arrays for non-empty comments, matching the reference behavior.
func (f *FeatureExtractor) Extract(tokens []string) []float64 {
	v := f.Vocab.Size()
	features := make([]float64, v+2)

	n := len(tokens)
	if n > f.MaxTokens {
		n = f.MaxTokens
	}

	var semicolons float64
	for i := 0; i < n; i++ {
		tok := tokens[i]
		if idx, ok := f.Vocab.IndexOf(tok); ok {
			features[idx]++
		}
		semicolons += float64(strings.Count(tok, ";"))
	}
	features[v] = semicolons
	features[v+1] = semicolons / float64(n)
	return features
}
