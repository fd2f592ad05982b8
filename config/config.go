// Package config loads a tenants file and builds the engine and execution
// contexts it describes.
//
// A tenants file (YAML, TOML or JSON) looks like:
//
//	engine:
//	  err_stream: stderr
//	  shared:
//	    kind: file
//	    path: /var/log/app/shared.log
//	tenants:
//	  - id: acme
//	    destination:
//	      kind: stdout
//	      format: json
//	      level: info
//	  - id: globex
//	  - id: initech
//	    silent: true
//
// A tenant without a destination uses the engine's shared destination, then
// the engine's err_stream, then nothing.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TENANTLOG_ENGINE_ERR_STREAM.
const EnvPrefix = "TENANTLOG"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// validate is shared; building a validator is expensive.
var validate = validator.New()

// Config is the root of a tenants file.
type Config struct {
	Engine  Engine   `mapstructure:"engine"`
	Tenants []Tenant `mapstructure:"tenants" validate:"unique=ID,dive"`
}

// Engine holds settings shared by all tenants.
type Engine struct {
	// Shared is the engine-wide destination used by tenants without one.
	Shared *Destination `mapstructure:"shared"`
	// ErrStream is the fallback stream: stderr, stdout or none.
	ErrStream string `mapstructure:"err_stream" validate:"omitempty,oneof=stderr stdout none"`
}

// Tenant describes one execution context.
type Tenant struct {
	ID          string       `mapstructure:"id" validate:"required"`
	Silent      bool         `mapstructure:"silent"`
	Destination *Destination `mapstructure:"destination"`
}

// Destination describes a log handler.
type Destination struct {
	Kind       string `mapstructure:"kind" validate:"required,oneof=none stdout stderr file memory console"`
	Path       string `mapstructure:"path" validate:"required_if=Kind file"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json logfmt"`
	Prefix     string `mapstructure:"prefix"`
	Level      string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Caller     bool   `mapstructure:"caller"`
	Async      bool   `mapstructure:"async"`
	BufferSize int    `mapstructure:"buffer_size" validate:"gte=0"`
	Overflow   string `mapstructure:"overflow" validate:"omitempty,oneof=drop_newest drop_oldest block"`
	MaxSize    int64  `mapstructure:"max_size" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	Limit      int    `mapstructure:"limit" validate:"gte=0"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("engine.err_stream", "stderr")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads and validates the tenants file at path. The format follows the
// file extension.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return decode(v)
}

// Read parses a tenants document of the given type ("yaml", "toml" or
// "json") from r.
func Read(r io.Reader, configType string) (*Config, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
