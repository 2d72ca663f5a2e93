// Package config loads tool and server settings from an optional YAML file,
// a .env file and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go.ngs.io/surge-forcing/internal/domain"
)

// Config holds the settings shared by the CLIs and the HTTP server.
type Config struct {
	DataDir  string `validate:"required"`
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	BlendPolicy    string `validate:"required,oneof=nearest pairwise pairwise-averaged pairwise_averaged"`
	BlendStepCount int    `validate:"min=0"`
	OutputEncoding string `validate:"required,oneof=float32 float int16 short packed"`
	FillValue      float64

	// Empty means leave the axis as read.
	LatitudeOrder  string `validate:"omitempty,oneof=ascending asc descending desc"`
	LongitudeRange string `validate:"omitempty,oneof=-180-180 180 0-360 360"`

	BatchConcurrency int `validate:"min=1,max=64"`

	VarPressure string `validate:"required"`
	VarUWind    string `validate:"required"`
	VarVWind    string `validate:"required"`

	CORSAllowedOrigins []string

	// Requests per second for POST /v1/blend; zero disables limiting.
	BlendRateLimit float64 `validate:"min=0"`
	BlendRateBurst int     `validate:"min=1"`
}

type fileConfig struct {
	DataDir  string `yaml:"data_dir"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Blend struct {
		Policy           string   `yaml:"policy"`
		StepCount        *int     `yaml:"step_count"`
		Encoding         string   `yaml:"encoding"`
		FillValue        *float64 `yaml:"fill_value"`
		LatitudeOrder    string   `yaml:"latitude_order"`
		LongitudeRange   string   `yaml:"longitude_range"`
		BatchConcurrency int      `yaml:"batch_concurrency"`
	} `yaml:"blend"`

	Variables struct {
		Pressure string `yaml:"pressure"`
		UWind    string `yaml:"u_wind"`
		VWind    string `yaml:"v_wind"`
	} `yaml:"variables"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	RateLimit struct {
		RPS   *float64 `yaml:"rps"`
		Burst int      `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataDir:          "./data",
		Port:             "8080",
		LogLevel:         "INFO",
		BlendPolicy:      "pairwise",
		OutputEncoding:   "float32",
		FillValue:        -9999,
		BatchConcurrency: 4,
		VarPressure:      "msl",
		VarUWind:         "u10",
		VarVWind:         "v10",
		BlendRateLimit:   1,
		BlendRateBurst:   4,
	}
}

// Load builds the configuration. path names an optional YAML file; when
// empty, CONFIG_FILE is consulted. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		cfg.applyFile(&fc)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(fc *fileConfig) {
	setString(&c.DataDir, fc.DataDir)
	setString(&c.Port, fc.Port)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.BlendPolicy, fc.Blend.Policy)
	if fc.Blend.StepCount != nil {
		c.BlendStepCount = *fc.Blend.StepCount
	}
	setString(&c.OutputEncoding, fc.Blend.Encoding)
	if fc.Blend.FillValue != nil {
		c.FillValue = *fc.Blend.FillValue
	}
	setString(&c.LatitudeOrder, fc.Blend.LatitudeOrder)
	setString(&c.LongitudeRange, fc.Blend.LongitudeRange)
	if fc.Blend.BatchConcurrency != 0 {
		c.BatchConcurrency = fc.Blend.BatchConcurrency
	}
	setString(&c.VarPressure, fc.Variables.Pressure)
	setString(&c.VarUWind, fc.Variables.UWind)
	setString(&c.VarVWind, fc.Variables.VWind)
	if len(fc.CORS.AllowedOrigins) > 0 {
		c.CORSAllowedOrigins = fc.CORS.AllowedOrigins
	}
	if fc.RateLimit.RPS != nil {
		c.BlendRateLimit = *fc.RateLimit.RPS
	}
	if fc.RateLimit.Burst != 0 {
		c.BlendRateBurst = fc.RateLimit.Burst
	}
}

func (c *Config) applyEnv() error {
	setString(&c.DataDir, os.Getenv("DATA_DIR"))
	setString(&c.Port, os.Getenv("PORT"))
	setString(&c.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&c.BlendPolicy, os.Getenv("BLEND_POLICY"))
	setString(&c.OutputEncoding, os.Getenv("OUTPUT_ENCODING"))
	setString(&c.LatitudeOrder, os.Getenv("LATITUDE_ORDER"))
	setString(&c.LongitudeRange, os.Getenv("LONGITUDE_RANGE"))
	setString(&c.VarPressure, os.Getenv("VAR_PRESSURE"))
	setString(&c.VarUWind, os.Getenv("VAR_U_WIND"))
	setString(&c.VarVWind, os.Getenv("VAR_V_WIND"))

	var err error
	if c.BlendStepCount, err = getenvInt("BLEND_STEP_COUNT", c.BlendStepCount); err != nil {
		return err
	}
	if c.BatchConcurrency, err = getenvInt("BATCH_CONCURRENCY", c.BatchConcurrency); err != nil {
		return err
	}
	if c.BlendRateBurst, err = getenvInt("BLEND_RATE_LIMIT_BURST", c.BlendRateBurst); err != nil {
		return err
	}
	if c.FillValue, err = getenvFloat("FILL_VALUE", c.FillValue); err != nil {
		return err
	}
	if c.BlendRateLimit, err = getenvFloat("BLEND_RATE_LIMIT_RPS", c.BlendRateLimit); err != nil {
		return err
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// WindPolicy returns the configured blend policy.
func (c *Config) WindPolicy() (domain.WindPolicy, error) {
	return domain.ParseWindPolicy(c.BlendPolicy)
}

// LatitudeOrderHook returns the requested latitude order, or zero when the
// axis should be left as read.
func (c *Config) LatitudeOrderHook() (domain.LatitudeOrder, error) {
	if c.LatitudeOrder == "" {
		return 0, nil
	}
	return domain.ParseLatitudeOrder(c.LatitudeOrder)
}

// LongitudeRangeHook returns the requested longitude convention, or zero when
// longitudes should be left as read.
func (c *Config) LongitudeRangeHook() (domain.LongitudeRange, error) {
	if c.LongitudeRange == "" {
		return 0, nil
	}
	return domain.ParseLongitudeRange(c.LongitudeRange)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
