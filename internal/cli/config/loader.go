package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/modeldoctor/internal/config"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	envFileUsed    string
)

// flagKeys maps flag names to config keys. Flags missing from the map are
// command options rather than configuration and never reach koanf.
var flagKeys = map[string]string{
	"manifest":    "manifest",
	"models-dir":  "models_dir",
	"state":       "state_path",
	"no-history":  "no_history",
	"verbose":     "verbose",
	"output":      "output",
	"concurrency": "concurrency",
}

// envVarPattern matches ${VAR} references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Directory of an explicit --config file
//  2. Parent of --models-dir when it holds a config file or the folder is named "models"
//  3. Search upward from CWD for modeldoctor.yaml
//  4. Current working directory
func inferProjectRoot(cfgFile string, flags *pflag.FlagSet) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	if flags != nil && flags.Changed("models-dir") {
		if modelsDir, _ := flags.GetString("models-dir"); modelsDir != "" {
			if absModels, err := filepath.Abs(modelsDir); err == nil {
				parent := filepath.Dir(absModels)
				if intconfig.FindConfigFile(parent) != "" || filepath.Base(absModels) == "models" {
					return parent
				}
			}
		}
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := intconfig.FindProjectRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// absFromFlag returns the absolute form of a path flag the user set.
// Flag paths are relative to the working directory, not the project root.
func absFromFlag(flags *pflag.FlagSet, name string) string {
	if flags == nil || flags.Lookup(name) == nil || !flags.Changed(name) {
		return ""
	}
	v, _ := flags.GetString(name)
	if v == "" {
		return ""
	}
	abs, err := filepath.Abs(v)
	if err != nil {
		return v
	}
	return abs
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	envFileUsed = ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithTarget(cfgFile, "", flags)
}

// LoadConfigWithTarget loads configuration with an optional target override.
// The targetOverride parameter names the environment whose target is used.
func LoadConfigWithTarget(cfgFile string, targetOverride string, flags *pflag.FlagSet) (*Config, error) {
	ResetConfig()

	projectRoot := inferProjectRoot(cfgFile, flags)

	// .env never overrides variables already set in the process.
	if err := loadDotEnv(projectRoot); err != nil {
		return nil, err
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"state_path":  DefaultStateFile,
		"environment": DefaultEnv,
		"verbose":     false,
		"output":      DefaultOutput,
		"concurrency": DefaultConcurrency,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		cfgFile = intconfig.FindConfigFile(projectRoot)
	} else if _, err := os.Stat(cfgFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: MODELDOCTOR_MODELS_DIR -> models_dir,
	// MODELDOCTOR_TARGET_HOST -> target.host
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	// 6. Environment overrides
	envForTarget := cfg.Environment
	if targetOverride != "" {
		envForTarget = targetOverride
		cfg.Environment = targetOverride
	}
	if envCfg, ok := cfg.Environments[envForTarget]; ok {
		if len(envCfg.Manifest) > 0 && !changed(flags, "manifest") {
			cfg.Manifest = envCfg.Manifest
		}
		if envCfg.ModelsDir != "" && !changed(flags, "models-dir") {
			cfg.ModelsDir = envCfg.ModelsDir
		}
		if envCfg.Target != nil {
			cfg.Target = MergeTargetConfig(cfg.Target, envCfg.Target)
		}
	}

	if len(cfg.Manifest) == 0 && cfg.ModelsDir == "" {
		cfg.Manifest = []string{intconfig.DefaultManifest}
	}

	// 7. Paths. Flag values were given relative to the working directory;
	// everything else is relative to the project root.
	cfg.resolvePaths(flags)

	intconfig.ApplyTargetDefaults(cfg.Target)
	expandTargetEnvVars(cfg.Target)
	if cfg.Target != nil && isFileTarget(cfg.Target.Type) && cfg.Target.Database != ":memory:" {
		cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, projectRoot)
	}

	if err := intconfig.ValidateTarget(cfg.Target); err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) resolvePaths(flags *pflag.FlagSet) {
	if changed(flags, "manifest") {
		for i, m := range c.Manifest {
			if abs, err := filepath.Abs(m); err == nil {
				c.Manifest[i] = abs
			}
		}
	} else {
		for i, m := range c.Manifest {
			c.Manifest[i] = resolvePathRelativeTo(m, c.ProjectRoot)
		}
	}

	if p := absFromFlag(flags, "models-dir"); p != "" {
		c.ModelsDir = p
	} else {
		c.ModelsDir = resolvePathRelativeTo(c.ModelsDir, c.ProjectRoot)
	}

	if p := absFromFlag(flags, "state"); p != "" {
		c.StatePath = p
	} else {
		c.StatePath = resolvePathRelativeTo(c.StatePath, c.ProjectRoot)
	}
}

func changed(flags *pflag.FlagSet, name string) bool {
	return flags != nil && flags.Lookup(name) != nil && flags.Changed(name)
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "target_"); ok {
		return "target." + rest
	}
	return key
}

func isFileTarget(dbType string) bool {
	return dbType == "sqlite" || dbType == "duckdb"
}

// loadDotEnv loads .env from the project root when present.
func loadDotEnv(projectRoot string) error {
	path := filepath.Join(projectRoot, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	envFileUsed = path
	return nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetEnvFileUsed returns the .env file that was loaded, if any.
func GetEnvFileUsed() string {
	return envFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or nil.
func FromContext(ctx context.Context) *Config {
	if ctx == nil {
		return nil
	}
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *core.TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	for key, v := range t.Options {
		t.Options[key] = expandEnvVars(v)
	}
}

// MergeTargetConfig merges two target configs, with override taking precedence.
func MergeTargetConfig(base, override *core.TargetConfig) *core.TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string, len(base.Options)+len(override.Options))
	merged.Params = make(map[string]any, len(base.Params)+len(override.Params))
	for key, v := range base.Options {
		merged.Options[key] = v
	}
	for key, v := range base.Params {
		merged.Params[key] = v
	}

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	for key, v := range override.Options {
		merged.Options[key] = v
	}
	for key, v := range override.Params {
		merged.Params[key] = v
	}

	return &merged
}
