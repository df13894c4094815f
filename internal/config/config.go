package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/acm19/yasuo/internal/compress"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. YASUO_MAX_WIDTH.
const EnvPrefix = "YASUO"

// Config holds the settings for one CLI invocation.
type Config struct {
	// Quality is the encoder quality fraction in [0,1].
	Quality float64 `mapstructure:"quality" default:"0.8" validate:"gte=0,lte=1"`
	// MaxWidth is the widest output allowed, in pixels.
	MaxWidth int `mapstructure:"max_width" default:"1920" validate:"gt=0"`
	// Format is the output encoding.
	Format string `mapstructure:"format" default:"jpeg" validate:"oneof=jpeg png webp"`
	// OutputDir receives the compressed files.
	OutputDir string `mapstructure:"output_dir" default:"." validate:"required"`
	// Bucket, when set, also uploads the compressed files to S3.
	Bucket string `mapstructure:"bucket"`
	// Prefix is the S3 key prefix.
	Prefix string `mapstructure:"prefix"`
	// LogFile adds a rotating log file sink.
	LogFile string `mapstructure:"log_file"`
	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`
}

// keys lists every mapstructure key so environment variables can be bound.
var keys = []string{"quality", "max_width", "format", "output_dir", "bucket", "prefix", "log_file", "debug"}

// Default returns a Config populated from the struct defaults.
func Default() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return cfg
}

// Load merges, lowest to highest: defaults, the YAML file at path (optional),
// YASUO_* environment variables, and flags explicitly set in flags (optional).
// Flags are looked up by key with "_" replaced by "-".
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for _, key := range keys {
			f := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize rewrites accepted aliases such as "jpg" or "PNG" to their canonical
// names. Unknown formats are left for Validate to reject.
func (c *Config) normalize() {
	if format, err := compress.ParseFormat(c.Format); err == nil {
		c.Format = string(format)
	}
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Settings converts the config into per-batch compression settings.
func (c *Config) Settings() (compress.Settings, error) {
	format, err := compress.ParseFormat(c.Format)
	if err != nil {
		return compress.Settings{}, err
	}
	return compress.Settings{
		Quality:  c.Quality,
		MaxWidth: c.MaxWidth,
		Format:   format,
	}, nil
}
