// Package config loads run settings from defaults, an optional YAML file,
// ADAPTIVEDOC_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/morozRed/adaptivedoc/internal/docs"
	"github.com/morozRed/adaptivedoc/internal/llm"
	"github.com/morozRed/adaptivedoc/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is looked up in the documented root when no --config is given.
	FileName = ".adaptivedoc.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ADAPTIVEDOC"

	DefaultReportPath  = "docs/generated_docstrings.md"
	DefaultSandboxPath = "experiments/sandbox.py"
)

// LLM configures the chat completions generator.
type LLM struct {
	Endpoint    string        `json:"endpoint" mapstructure:"endpoint"`
	Model       string        `json:"model" mapstructure:"model"`
	APIKey      string        `json:"-" mapstructure:"api_key"`
	Temperature float64       `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `json:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxRetries  int           `json:"max_retries" mapstructure:"max_retries"`
}

// Config is the resolved configuration of one run.
type Config struct {
	Generator     string   `json:"generator" mapstructure:"generator"`
	LLM           LLM      `json:"llm" mapstructure:"llm"`
	ContextLimit  int      `json:"context_limit" mapstructure:"context_limit"`
	Workers       int      `json:"workers" mapstructure:"workers"`
	RequireNumPy  bool     `json:"require_numpy" mapstructure:"require_numpy"`
	DenyListExtra []string `json:"deny_list_extra,omitempty" mapstructure:"deny_list_extra"`
	ReportPath    string   `json:"report_path" mapstructure:"report_path"`
	SandboxPath   string   `json:"sandbox_path" mapstructure:"sandbox_path"`
	LogLevel      string   `json:"log_level" mapstructure:"log_level"`
}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// Root is the documented directory; FileName is looked up there.
	Root string
	// ConfigFile, when set, is used exclusively and must exist.
	ConfigFile string
	// Flags are bound on top of every other source. Only flags named in
	// FlagKeys are considered.
	Flags *pflag.FlagSet
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"generator":     "generator",
	"endpoint":      "llm.endpoint",
	"model":         "llm.model",
	"temperature":   "llm.temperature",
	"max-tokens":    "llm.max_tokens",
	"timeout":       "llm.timeout",
	"retries":       "llm.max_retries",
	"context-limit": "context_limit",
	"workers":       "workers",
	"require-numpy": "require_numpy",
	"deny":          "deny_list_extra",
	"report":        "report_path",
	"sandbox":       "sandbox_path",
	"log-level":     "log_level",
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Generator: string(llm.KindOpenAI),
		LLM: LLM{
			Endpoint:    llm.DefaultEndpoint,
			Model:       llm.DefaultModel,
			Temperature: 0.2,
			MaxTokens:   512,
			Timeout:     2 * time.Minute,
			MaxRetries:  3,
		},
		ContextLimit: docs.DefaultContextLimit,
		Workers:      1,
		ReportPath:   DefaultReportPath,
		SandboxPath:  DefaultSandboxPath,
		LogLevel:     logging.DefaultLevel,
	}
}

// Load resolves the configuration and returns it together with the config
// file actually read, if any.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("generator", defaults.Generator)
	v.SetDefault("llm.endpoint", defaults.LLM.Endpoint)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", defaults.LLM.Temperature)
	v.SetDefault("llm.max_tokens", defaults.LLM.MaxTokens)
	v.SetDefault("llm.timeout", defaults.LLM.Timeout)
	v.SetDefault("llm.max_retries", defaults.LLM.MaxRetries)
	v.SetDefault("context_limit", defaults.ContextLimit)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("require_numpy", defaults.RequireNumPy)
	v.SetDefault("deny_list_extra", []string{})
	v.SetDefault("report_path", defaults.ReportPath)
	v.SetDefault("sandbox_path", defaults.SandboxPath)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		resolvedPath = opts.ConfigFile
	} else if opts.Root != "" {
		if candidate := filepath.Join(opts.Root, FileName); fileExists(candidate) {
			resolvedPath = candidate
		}
	}
	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", resolvedPath, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, "", fmt.Errorf("failed to bind --%s flag: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate rejects settings no run can use.
func (c *Config) Validate() error {
	var errs []error
	if _, err := llm.ParseKind(c.Generator); err != nil {
		errs = append(errs, err)
	}
	if c.ContextLimit < 1 {
		errs = append(errs, fmt.Errorf("context_limit must be >= 1, got %d", c.ContextLimit))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be within [0, 2], got %g", c.LLM.Temperature))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max_retries must be >= 0, got %d", c.LLM.MaxRetries))
	}
	if strings.TrimSpace(c.ReportPath) == "" {
		errs = append(errs, errors.New("report_path must not be empty"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ClientConfig converts the LLM section into generator settings.
func (c *Config) ClientConfig() llm.ClientConfig {
	return llm.ClientConfig{
		Endpoint:    c.LLM.Endpoint,
		Model:       c.LLM.Model,
		APIKey:      c.LLM.APIKey,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Timeout:     c.LLM.Timeout,
		MaxRetries:  c.LLM.MaxRetries,
	}
}

// ResolvePath anchors a relative artifact path at root.
func ResolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
