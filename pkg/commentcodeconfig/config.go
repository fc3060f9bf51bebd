// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package commentcodeconfig loads the commentcode CLI's YAML configuration
// file, following the same read-file-then-unmarshal convention the rest of
// the host project's command-line tools use.
package commentcodeconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/commentcode/internal/commentcode"
)

// Config holds every field the scan subcommand can override. All fields
// have defaults (see Defaults) applied when absent from the file or left
// at their zero value.
type Config struct {
	// MaxTokens bounds how many tokens the feature extractor considers.
	MaxTokens int `yaml:"max_tokens"`

	// Threshold is the logistic regression decision threshold.
	Threshold float64 `yaml:"threshold"`

	// ResourcesDir, if set, overrides the embedded merges.txt/vocab.json/
	// model.json with files loaded from this directory.
	ResourcesDir string `yaml:"resources_dir"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// LogFile, if set, also writes logs to this directory (see
	// logging.Config.LogDir).
	LogFile string `yaml:"log_file"`

	// TraceExporter selects the OpenTelemetry trace exporter: "stdout",
	// "otlp", or "none".
	TraceExporter string `yaml:"trace_exporter"`

	// MetricExporter selects the OpenTelemetry metric exporter: "stdout",
	// "prometheus", or "none".
	MetricExporter string `yaml:"metric_exporter"`

	// OTLPEndpoint is the OTLP collector gRPC endpoint, consulted only
	// when TraceExporter is "otlp".
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// PrometheusPort is the port the /metrics endpoint listens on,
	// consulted only when MetricExporter is "prometheus". Only useful
	// for a "scan --watch" process, which stays alive to be scraped.
	PrometheusPort int `yaml:"prometheus_port"`
}

// Defaults returns the configuration used when no file is present and no
// field has been overridden.
func Defaults() Config {
	return Config{
		MaxTokens:      commentcode.DefaultMaxTokens,
		Threshold:      commentcode.DefaultThreshold,
		LogLevel:       "info",
		TraceExporter:  "stdout",
		MetricExporter: "stdout",
		OTLPEndpoint:   "localhost:4317",
		PrometheusPort: 9090,
	}
}

// Load reads and parses a YAML config file at path, filling any zero-
// valued field with its default. A missing file is not an error: Load
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("commentcodeconfig: reading %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("commentcodeconfig: parsing %s: %w", path, err)
	}

	applyOverrides(&cfg, fileCfg)
	return cfg, nil
}

// applyOverrides copies every non-zero field of override into base.
func applyOverrides(base *Config, override Config) {
	if override.MaxTokens != 0 {
		base.MaxTokens = override.MaxTokens
	}
	if override.Threshold != 0 {
		base.Threshold = override.Threshold
	}
	if override.ResourcesDir != "" {
		base.ResourcesDir = override.ResourcesDir
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if override.LogFile != "" {
		base.LogFile = override.LogFile
	}
	if override.TraceExporter != "" {
		base.TraceExporter = override.TraceExporter
	}
	if override.MetricExporter != "" {
		base.MetricExporter = override.MetricExporter
	}
	if override.OTLPEndpoint != "" {
		base.OTLPEndpoint = override.OTLPEndpoint
	}
	if override.PrometheusPort != 0 {
		base.PrometheusPort = override.PrometheusPort
	}
}
