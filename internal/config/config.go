// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config holds the typed build configuration.
// Field tags use mapstructure for viper unmarshalling and yaml for `projreport config`.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// Feature names a report section that can be disabled.
type Feature string

const (
	FeatureIndex    Feature = "index"
	FeatureLint     Feature = "lint"
	FeatureDocs     Feature = "docs"
	FeatureTrace    Feature = "trace"
	FeatureGitLog   Feature = "gitlog"
	FeatureGitStats Feature = "gitstats"
	FeatureGource   Feature = "gource"
	FeatureArchive  Feature = "archive"
)

// AllFeatures lists every feature in task order.
func AllFeatures() []Feature {
	return []Feature{
		FeatureIndex,
		FeatureLint,
		FeatureDocs,
		FeatureTrace,
		FeatureGitLog,
		FeatureGitStats,
		FeatureGource,
		FeatureArchive,
	}
}

// SortKeys are the cProfile sort keys accepted for trace.sort.
var SortKeys = []string{
	"calls", "cumtime", "cumulative", "file", "filename", "line", "module",
	"name", "ncalls", "nfl", "pcalls", "stdname", "time", "tottime",
}

var (
	// ErrUnknownFeature indicates a disable entry that names no feature.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrInvalidDepth indicates a trace depth below 1.
	ErrInvalidDepth = errors.New("trace.depth must be at least 1")
	// ErrInvalidSortKey indicates a trace sort key cProfile does not accept.
	ErrInvalidSortKey = errors.New("invalid trace.sort key")
	// ErrInvalidPageSize indicates a history page size below 1.
	ErrInvalidPageSize = errors.New("page_size must be at least 1")
	// ErrInvalidProcesses indicates a negative gitstats process count.
	ErrInvalidProcesses = errors.New("stats_processes must be at least 1")
	// ErrEmptyOutput indicates an empty output directory.
	ErrEmptyOutput = errors.New("output must not be empty")
	// ErrInvalidLog indicates an unknown log level or format.
	ErrInvalidLog = errors.New("invalid log setting")
)

// Config is the resolved configuration of one build.
type Config struct {
	Project        string      `mapstructure:"project"         yaml:"project"`
	Output         string      `mapstructure:"output"          yaml:"output"`
	Ignore         []string    `mapstructure:"ignore"          yaml:"ignore"`
	Disable        []string    `mapstructure:"disable"         yaml:"disable"`
	Trace          TraceConfig `mapstructure:"trace"           yaml:"trace"`
	NoDelete       bool        `mapstructure:"no_delete"       yaml:"no_delete"`
	NoOpen         bool        `mapstructure:"no_open"         yaml:"no_open"`
	Strict         bool        `mapstructure:"strict"          yaml:"strict"`
	PageSize       int         `mapstructure:"page_size"       yaml:"page_size"`
	Log            LogConfig   `mapstructure:"log"             yaml:"log"`
	MetricsFile    string      `mapstructure:"metrics_file"    yaml:"metrics_file"`
	Tools          ToolsConfig `mapstructure:"tools"           yaml:"tools"`
	StatsProcesses int         `mapstructure:"stats_processes" yaml:"stats_processes"`
}

// TraceConfig selects the files to profile.
type TraceConfig struct {
	Targets []string `mapstructure:"targets" yaml:"targets"`
	Depth   int      `mapstructure:"depth"   yaml:"depth"`
	Sort    string   `mapstructure:"sort"    yaml:"sort"`
}

// LogConfig controls the injected logger.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ToolsConfig holds the command prefixes of the wrapped tools. Arguments
// are appended by the tasks.
type ToolsConfig struct {
	Lint            string `mapstructure:"lint"             yaml:"lint"`
	Docs            string `mapstructure:"docs"             yaml:"docs"`
	Profile         string `mapstructure:"profile"          yaml:"profile"`
	Callgraph       string `mapstructure:"callgraph"        yaml:"callgraph"`
	Gitstats        string `mapstructure:"gitstats"         yaml:"gitstats"`
	Gource          string `mapstructure:"gource"           yaml:"gource"`
	Encoder         string `mapstructure:"encoder"          yaml:"encoder"`
	FallbackEncoder string `mapstructure:"fallback_encoder" yaml:"fallback_encoder"`
	Archive         string `mapstructure:"archive"          yaml:"archive"`
	Open            string `mapstructure:"open"             yaml:"open"`
}

// Enabled reports whether f is not disabled.
func (c *Config) Enabled(f Feature) bool {
	for _, d := range c.Disable {
		if Feature(strings.TrimSpace(d)) == f {
			return false
		}
	}
	return true
}

// EnabledFeatures returns the enabled features in task order.
func (c *Config) EnabledFeatures() []Feature {
	var out []Feature
	for _, f := range AllFeatures() {
		if c.Enabled(f) {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the configuration for values no build can use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return ErrEmptyOutput
	}
	for _, d := range c.Disable {
		if !slices.Contains(AllFeatures(), Feature(strings.TrimSpace(d))) {
			return fmt.Errorf("%w: %q (valid: %s)", ErrUnknownFeature, d, featureList())
		}
	}
	if c.Trace.Depth < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, c.Trace.Depth)
	}
	if !slices.Contains(SortKeys, c.Trace.Sort) {
		return fmt.Errorf("%w: %q", ErrInvalidSortKey, c.Trace.Sort)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.PageSize)
	}
	if c.StatsProcesses < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidProcesses, c.StatsProcesses)
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
			return fmt.Errorf("%w: level %q", ErrInvalidLog, c.Log.Level)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidLog, c.Log.Format)
	}
	return nil
}

func featureList() string {
	names := make([]string, 0, len(AllFeatures()))
	for _, f := range AllFeatures() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
