// Package config loads iconstage settings from a file and the environment.
//
// Files may be YAML, TOML or JSON. Every key can be overridden by an
// environment variable with the ICONSTAGE_ prefix, for example
// ICONSTAGE_RESOLUTION=128.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/gogpu/iconstage"
	"github.com/gogpu/iconstage/dump"
	"github.com/gogpu/iconstage/override"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "ICONSTAGE"

// Config holds the settings of an icon stage.
type Config struct {
	TransparencyRatio float64 `mapstructure:"transparency_ratio" validate:"gte=0,lte=1"`
	Resolution        int     `mapstructure:"resolution" validate:"gte=8,lte=4096"`
	Margin            int     `mapstructure:"margin" validate:"gte=0"`
	Iterations        int     `mapstructure:"iterations" validate:"gte=1,lte=8"`
	Orthographic      bool    `mapstructure:"orthographic"`
	NearClip          float64 `mapstructure:"near_clip" validate:"gt=0"`
	FarClip           float64 `mapstructure:"far_clip" validate:"gtfield=NearClip"`
	// FOV is the vertical field of view in degrees the host camera starts
	// with.
	FOV float64 `mapstructure:"fov" validate:"gt=0,lt=180"`

	ListBehaviour string `mapstructure:"list_behaviour" validate:"oneof=blacklist whitelist none"`
	// ItemList is a comma separated list of item keys.
	ItemList string `mapstructure:"item_list"`

	DumpToCache  bool     `mapstructure:"dump_to_cache"`
	DumpDir      string   `mapstructure:"dump_dir" validate:"required_if=DumpToCache true"`
	OverrideDirs []string `mapstructure:"override_dirs" validate:"dive,required"`

	MeshCacheSize       int   `mapstructure:"mesh_cache_size" validate:"gte=0"`
	ResultTimeoutFrames int64 `mapstructure:"result_timeout_frames" validate:"gte=0"`

	LogLevel         string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	VerboseRendering bool   `mapstructure:"verbose_rendering"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Config)
		if c.Margin*2 > c.Resolution {
			sl.ReportError(c.Margin, "Margin", "margin", "max_half_resolution", "")
		}
	}, Config{})
	return v
}

// Default returns the built-in settings.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("transparency_ratio", iconstage.DefaultThreshold)
	v.SetDefault("resolution", iconstage.DefaultResolution)
	v.SetDefault("margin", iconstage.DefaultMargin)
	v.SetDefault("iterations", iconstage.DefaultIterations)
	v.SetDefault("orthographic", false)
	v.SetDefault("near_clip", iconstage.DefaultNearClip)
	v.SetDefault("far_clip", iconstage.DefaultFarClip)
	v.SetDefault("fov", 45.0)
	v.SetDefault("list_behaviour", iconstage.ListBlack.String())
	v.SetDefault("item_list", "")
	v.SetDefault("dump_to_cache", false)
	v.SetDefault("dump_dir", "")
	v.SetDefault("override_dirs", []string{})
	v.SetDefault("mesh_cache_size", iconstage.DefaultMeshCacheSize)
	v.SetDefault("result_timeout_frames", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("verbose_rendering", false)
}

// Load reads path, applies environment overrides and validates the result.
// An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	c.ListBehaviour = strings.ToLower(strings.TrimSpace(c.ListBehaviour))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: invalid %s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the log level. Verbose rendering forces debug.
func (c *Config) Level() slog.Level {
	if c.VerboseRendering {
		return slog.LevelDebug
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Filter returns the configured allow or deny list.
func (c *Config) Filter() (iconstage.ListFilter, error) {
	mode, err := iconstage.ParseListMode(c.ListBehaviour)
	if err != nil {
		return iconstage.ListFilter{}, err
	}
	return iconstage.NewListFilter(mode, iconstage.ParseItemList(c.ItemList)...), nil
}

// Options converts the settings into stage options. Override directories
// are loaded here.
func (c *Config) Options(ctx context.Context) ([]iconstage.Option, error) {
	filter, err := c.Filter()
	if err != nil {
		return nil, err
	}
	opts := []iconstage.Option{
		iconstage.WithThreshold(c.TransparencyRatio),
		iconstage.WithResolution(c.Resolution, c.Margin),
		iconstage.WithIterations(c.Iterations),
		iconstage.WithOrthographic(c.Orthographic),
		iconstage.WithClipPlanes(c.NearClip, c.FarClip),
		iconstage.WithListFilter(filter),
		iconstage.WithMeshCacheSize(c.MeshCacheSize),
		iconstage.WithResultTimeout(c.ResultTimeoutFrames),
	}
	if len(c.OverrideDirs) > 0 {
		set, err := override.Load(ctx, c.OverrideDirs...)
		if err != nil {
			return nil, fmt.Errorf("config: overrides: %w", err)
		}
		opts = append(opts, iconstage.WithOverrides(set))
	}
	if c.DumpToCache {
		opts = append(opts, iconstage.WithDumper(dump.New(c.DumpDir)))
	}
	return opts, nil
}
