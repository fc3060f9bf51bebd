// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package commentcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadEmbeddedResources_Succeeds verifies the bundled resources parse
// into a non-empty Resources value.
func TestLoadEmbeddedResources_Succeeds(t *testing.T) {
	resources, err := LoadEmbeddedResources()
	require.NoError(t, err)
	assert.Greater(t, resources.Vocab.Size(), 0)
	assert.NotEmpty(t, resources.Model.Coefficients)
}

// TestLoadResourcesFromDir_OverridesEmbedded verifies an external
// directory's files are loaded in place of the embedded defaults.
func TestLoadResourcesFromDir_OverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merges.txt"), []byte("#v\nh e\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vocab.json"), []byte(`["foo","bar"]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.json"), []byte(`{"intercept":1,"coefficients":[0.5,0.5,0,0]}`), 0o644))

	resources, err := LoadResourcesFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, resources.Vocab.Size())
	assert.Equal(t, 1.0, resources.Model.Intercept)
	assert.Equal(t, 0, resources.Ranks.rankOf(BpePair{Left: "h", Right: "e"}))
}

// TestLoadResourcesFromDir_MissingFileFails verifies a missing artifact
// surfaces ErrResourceLoadFailure rather than a bare os error.
func TestLoadResourcesFromDir_MissingFileFails(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadResourcesFromDir(dir)
	assert.ErrorIs(t, err, ErrResourceLoadFailure)
}

// TestLoadResourcesFromDir_MalformedModelFails verifies a model.json
// missing the coefficients field fails to load rather than producing a
// Model with a nil coefficient vector.
func TestLoadResourcesFromDir_MalformedModelFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merges.txt"), []byte("#v\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vocab.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.json"), []byte(`{"intercept":1}`), 0o644))

	_, err := LoadResourcesFromDir(dir)
	assert.ErrorIs(t, err, ErrResourceLoadFailure)
}
