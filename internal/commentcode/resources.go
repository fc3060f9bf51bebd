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
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

//go:embed resources/merges.txt resources/vocab.json resources/model.json
var embeddedResources embed.FS

// Resources bundles the three immutable artifacts the pipeline is
// calibrated against.
type Resources struct {
	Ranks *BpeRanks
	Vocab *Vocabulary
	Model ModelParams
}

// LoadEmbeddedResources parses the module's bundled merges.txt, vocab.json
// and model.json. It is safe to call repeatedly; callers that want a
// single shared instance should guard this with sync.Once (see
// loadSharedState).
func LoadEmbeddedResources() (*Resources, error) {
	return loadResourcesFromFS(embeddedResources, "resources")
}

// LoadResourcesFromDir parses the three artifacts from an external
// directory on disk, overriding the embedded defaults.
func LoadResourcesFromDir(dir string) (*Resources, error) {
	return loadResourcesFromFS(os.DirFS(dir), ".")
}

func loadResourcesFromFS(fsys fs.FS, dir string) (*Resources, error) {
	join := func(name string) string {
		if dir == "." || dir == "" {
			return name
		}
		return dir + "/" + name
	}

	merges, err := fs.ReadFile(fsys, join("merges.txt"))
	if err != nil {
		return nil, fmt.Errorf("%w: reading merges.txt: %v", ErrResourceLoadFailure, err)
	}
	ranks, err := ParseBpeRanks(bytes.NewReader(merges))
	if err != nil {
		return nil, err
	}

	vocabBytes, err := fs.ReadFile(fsys, join("vocab.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: reading vocab.json: %v", ErrResourceLoadFailure, err)
	}
	var vocabTokens []string
	if err := json.Unmarshal(vocabBytes, &vocabTokens); err != nil {
		return nil, fmt.Errorf("%w: vocab.json is not a JSON string array: %v", ErrResourceLoadFailure, err)
	}

	modelBytes, err := fs.ReadFile(fsys, join("model.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: reading model.json: %v", ErrResourceLoadFailure, err)
	}
	var params ModelParams
	if err := json.Unmarshal(modelBytes, &params); err != nil {
		return nil, fmt.Errorf("%w: model.json is malformed: %v", ErrResourceLoadFailure, err)
	}
	if params.Coefficients == nil {
		return nil, fmt.Errorf("%w: model.json is missing coefficients", ErrResourceLoadFailure)
	}
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(modelBytes, &fields)
	if _, ok := fields["intercept"]; !ok {
		return nil, fmt.Errorf("%w: model.json is missing intercept", ErrResourceLoadFailure)
	}

	return &Resources{
		Ranks: ranks,
		Vocab: NewVocabulary(vocabTokens),
		Model: params,
	}, nil
}
