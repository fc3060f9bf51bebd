// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package commentcodeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/commentcode/internal/commentcode"
)

// TestLoad_EmptyPathReturnsDefaults verifies an empty path short-circuits
// to Defaults() without touching the filesystem.
func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

// TestLoad_MissingFileReturnsDefaults verifies a nonexistent path is not
// an error.
func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

// TestLoad_FileOverridesOnlySetFields verifies fields present in the file
// override the default, and absent fields keep their default value.
func TestLoad_FileOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 0.5\nlog_level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Threshold)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, commentcode.DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "stdout", cfg.MetricExporter)
}

// TestLoad_MalformedYAMLFails verifies invalid YAML surfaces an error
// rather than silently falling back to defaults.
func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: [unterminated\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

// TestDefaults_MatchesDetectorDefaults verifies the config package's
// defaults stay in sync with the classification pipeline's own constants.
func TestDefaults_MatchesDetectorDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, commentcode.DefaultThreshold, cfg.Threshold)
	assert.Equal(t, commentcode.DefaultMaxTokens, cfg.MaxTokens)
}
