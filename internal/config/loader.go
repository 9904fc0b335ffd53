// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bartekus/projreport/internal/projectroot"
	"github.com/bartekus/projreport/internal/scanner"
)

// configName is the config file name without extension.
const configName = "projreport"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for projreport settings.
const envPrefix = "PROJREPORT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Defaults.
const (
	DefaultOutput         = "report"
	DefaultTraceDepth     = 5
	DefaultTraceSort      = "cumulative"
	DefaultPageSize       = 10
	DefaultStatsProcesses = 8
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	DefaultLintTool      = "pylint --include-naming-hint=y"
	DefaultDocsTool      = "pydoc3 -w"
	DefaultProfileTool   = "python3 -m cProfile"
	DefaultCallgraphTool = "pycallgraph"
	DefaultGitstatsTool  = "gitstats"
	DefaultGourceTool    = "gource --max-files 0 -s 1 -c 4 -1280x720 -o -"
	DefaultEncoderTool   = "ffmpeg" + encoderArgs
	DefaultFallbackTool  = "avconv" + encoderArgs
	DefaultArchiveTool   = "7z a"
	DefaultOpenTool      = "xdg-open"
)

const encoderArgs = " -y -r 60 -f image2pipe -vcodec ppm -i - -vcodec libx264" +
	" -preset ultrafast -pix_fmt yuv420p -crf 1 -threads 8 -bf 0"

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"project":      "project",
	"output":       "output",
	"ignore":       "ignore",
	"disable":      "disable",
	"trace":        "trace.targets",
	"trace-depth":  "trace.depth",
	"trace-sort":   "trace.sort",
	"no-delete":    "no_delete",
	"no-open":      "no_open",
	"strict":       "strict",
	"page-size":    "page_size",
	"metrics-file": "metrics_file",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile is an explicit config file. When empty, projreport.yaml is
	// searched in the project directory and then the working directory.
	ConfigFile string
	// Flags are bound over file and environment values. Only flags the
	// user actually set take precedence.
	Flags *pflag.FlagSet
	// WorkDir is the directory relative defaults resolve against ("" = cwd).
	WorkDir string
}

// Load resolves defaults, the config file, PROJREPORT_* environment
// variables and bound flags, in increasing precedence, then validates.
// A missing config file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		workDir = wd
	}

	if opts.ConfigFile != "" {
		// An explicit file must exist; only the searched default is optional.
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		if p := v.GetString("project"); p != "" {
			v.AddConfigPath(resolve(workDir, p))
		}
		v.AddConfigPath(workDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Project == "" {
		cfg.Project = projectroot.FindOr(workDir, workDir)
	}
	cfg.Project = resolve(workDir, cfg.Project)
	cfg.Output = resolve(workDir, cfg.Output)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set, with project
// and output left relative.
func Default() *Config {
	v := viper.New()
	applyDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("project", "")
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("ignore", scanner.DefaultIgnore())
	v.SetDefault("disable", []string{})

	v.SetDefault("trace.targets", []string{})
	v.SetDefault("trace.depth", DefaultTraceDepth)
	v.SetDefault("trace.sort", DefaultTraceSort)

	v.SetDefault("no_delete", false)
	v.SetDefault("no_open", false)
	v.SetDefault("strict", false)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("metrics_file", "")
	v.SetDefault("stats_processes", DefaultStatsProcesses)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("tools.lint", DefaultLintTool)
	v.SetDefault("tools.docs", DefaultDocsTool)
	v.SetDefault("tools.profile", DefaultProfileTool)
	v.SetDefault("tools.callgraph", DefaultCallgraphTool)
	v.SetDefault("tools.gitstats", DefaultGitstatsTool)
	v.SetDefault("tools.gource", DefaultGourceTool)
	v.SetDefault("tools.encoder", DefaultEncoderTool)
	v.SetDefault("tools.fallback_encoder", DefaultFallbackTool)
	v.SetDefault("tools.archive", DefaultArchiveTool)
	v.SetDefault("tools.open", DefaultOpenTool)
}
