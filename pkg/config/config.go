package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment variable this process reads.
// TASKPACT_TEMPORAL_HOST_PORT maps to temporal.host_port.
const EnvPrefix = "TASKPACT_"

// Config is the process configuration: where the orchestration runtime
// lives, plus runtime behavior knobs. Contract content never comes from
// here; contracts are code.
type Config struct {
	Temporal TemporalConfig `koanf:"temporal" validate:"required"`
	Runtime  RuntimeConfig  `koanf:"runtime"  validate:"required"`
}

type TemporalConfig struct {
	HostPort  string `koanf:"host_port" validate:"required,hostname_port"`
	Namespace string `koanf:"namespace" validate:"required"`
}

type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error"`
	LogJSON   bool   `koanf:"log_json"`
	LogSource bool   `koanf:"log_source"`
}

func Default() *Config {
	return &Config{
		Temporal: TemporalConfig{
			HostPort:  "localhost:7233",
			Namespace: "default",
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
		},
	}
}

// Load layers configuration: defaults first, then environment variables with
// the TASKPACT_ prefix, then unmarshal and validate. The result is
// immutable for the life of the process.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, EnvPrefix)
			key = strings.ToLower(key)
			// TEMPORAL_HOST_PORT -> temporal.host_port: the first underscore
			// separates the section, the rest stays part of the field name.
			if section, field, ok := strings.Cut(key, "_"); ok {
				return section + "." + field, value
			}
			return key, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			TagName:          "koanf",
			Result:           cfg,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
