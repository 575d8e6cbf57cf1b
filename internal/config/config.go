// Package config provides configuration management for the environment server
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
// Double underscores nest: COFFEESHOP__SERVER__PORT -> server.port
const EnvPrefix = "COFFEESHOP__"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Publish PublishConfig `koanf:"publish"`
}

type ServerConfig struct {
	Port              string        `koanf:"port" validate:"required,numeric"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig leaves Level empty to derive it from the production flag.
type LoggingConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

type PublishConfig struct {
	Namespace string `koanf:"namespace" validate:"required"`
	Name      string `koanf:"name" validate:"required"`
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:              "8080",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Publish: PublishConfig{
			Namespace: "default",
			Name:      "frontend-environment",
		},
	}
}

// FlagMappings maps CLI flag names to config keys.
var FlagMappings = map[string]string{
	"port":      "server.port",
	"log-level": "logging.level",
	"namespace": "publish.namespace",
	"name":      "publish.name",
}

// Load builds the config from defaults, then environment variables, then
// flags that were explicitly set. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if flags != nil {
		var errs []error
		flags.Visit(func(f *pflag.Flag) {
			if key, ok := FlagMappings[f.Name]; ok {
				if err := k.Set(key, f.Value.String()); err != nil {
					errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
				}
			}
		})
		if err := errors.Join(errs...); err != nil {
			return nil, fmt.Errorf("failed to apply flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation of config failed: %w", err)
	}

	return &cfg, nil
}
