package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vortex-fintech/go-mask/validator"
)

const envPrefix = "MASKD_"

// Config is read from MASKD_* environment variables.
type Config struct {
	HTTPAddr        string        `validate:"required,hostname_port"`
	MetricsAddr     string        `validate:"omitempty,hostname_port"`
	Env             string        `validate:"oneof=development debug production"`
	PresetsFile     string        `validate:"omitempty,file"`
	ShutdownTimeout time.Duration `validate:"gte=0"`
	MaxValueRunes   int           `validate:"gt=0,lte=1048576"`
	MaxBatch        int           `validate:"gt=0,lte=100000"`
}

func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		MetricsAddr:     ":9090",
		Env:             "production",
		ShutdownTimeout: 10 * time.Second,
		MaxValueRunes:   4096,
		MaxBatch:        1000,
	}
}

// LoadConfig seeds the environment from envFile when it exists, then reads
// and validates Config. Variables already set in the environment win over the
// file. An empty envFile skips the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return ConfigFromLookup(os.LookupEnv)
}

// ConfigFromLookup builds Config from lookup, which has the signature of
// os.LookupEnv. Unset variables keep their DefaultConfig values.
func ConfigFromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := get("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := get("ENV"); ok && v != "" {
		cfg.Env = strings.ToLower(v)
	}
	if v, ok := get("PRESETS_FILE"); ok {
		cfg.PresetsFile = v
	}
	if v, ok := get("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%sSHUTDOWN_TIMEOUT: %w", envPrefix, err)
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := get("MAX_VALUE_RUNES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%sMAX_VALUE_RUNES: %w", envPrefix, err)
		}
		cfg.MaxValueRunes = n
	}
	if v, ok := get("MAX_BATCH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%sMAX_BATCH: %w", envPrefix, err)
		}
		cfg.MaxBatch = n
	}

	if err := validator.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
