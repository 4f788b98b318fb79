package config

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix  = "BFHL_"
	EnvConfig  = "BFHL_CONFIG"
	EnvEnvFile = "BFHL_ENV_FILE"

	defaultEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if BFHL_CONFIG is set
//  3. dotenv file (BFHL_ENV_FILE, or ./.env when present); it never
//     overrides variables already set in the process
//  4. env (prefix BFHL_), then the legacy PORT, GEMINI_API_KEY and
//     OPENAI_API_KEY variables for keys still unset
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "read %s", path), ErrLoadConfig)
		}
	}

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	// Map env keys like BFHL_MAX_BODY_BYTES -> max_body_bytes (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read environment"), ErrLoadConfig)
	}

	applyLegacyEnv(k)

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode config"), ErrInvalidConfig)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.MetricsNamespace = strings.TrimSpace(cfg.MetricsNamespace)
	cfg.MetricsEnvironment = strings.TrimSpace(cfg.MetricsEnvironment)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.RegisterValidation("metricname", isMetricName); err != nil {
		return errors.Wrap(err, "register metricname validation")
	}
	if err := v.Struct(cfg); err != nil {
		return errors.Mark(errors.Wrap(err, "validate config"), ErrInvalidConfig)
	}
	return nil
}

var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isMetricName accepts strings usable as a Prometheus name component.
func isMetricName(fl validator.FieldLevel) bool {
	return metricNamePattern.MatchString(fl.Field().String())
}

func loadDotenv() error {
	path, explicit := os.LookupEnv(EnvEnvFile)
	if !explicit {
		path = defaultEnvFile
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Mark(errors.Wrapf(err, "read %s", path), ErrLoadConfig)
	}
	return nil
}

// applyLegacyEnv honors the variable names used by earlier deployments.
func applyLegacyEnv(k *koanf.Koanf) {
	if !k.Exists("addr") {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			_ = k.Set("addr", ":"+port)
		}
	}
	if !k.Exists("ai_api_key") {
		names := []string{"GEMINI_API_KEY", "OPENAI_API_KEY"}
		if strings.EqualFold(k.String("ai_provider"), "openai") {
			names[0], names[1] = names[1], names[0]
		}
		for _, name := range names {
			if key := os.Getenv(name); key != "" {
				_ = k.Set("ai_api_key", key)
				break
			}
		}
	}
}
