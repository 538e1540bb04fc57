package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all environment variables for the importer service.
type Config struct {
	Port string

	RemoteURL    string `validate:"required,url"`
	RemoteAPIKey string `validate:"required"`
	// RemoteCustomIP pins the remote hostname to an explicit IP when the
	// importing server cannot resolve it.
	RemoteCustomIP string `validate:"omitempty,ip"`
	RemoteDebug    bool

	DefaultLangID int   `validate:"gt=0"`
	LangIDs       []int `validate:"omitempty,dive,gt=0"`

	HomeCategoryID int64 `validate:"gt=0"`
	// RootSentinel is the remote category id at or below which the tree
	// ends; parents at the sentinel map to the local home category.
	RootSentinel int `validate:"gte=0"`

	CoverageFeatureName string
	UnitPriceMax        float64 `validate:"gte=0"`
	MinImageBytes       int     `validate:"gte=0"`

	ImageDir string `validate:"required"`
	LogDir   string `validate:"required"`

	RedisURL string
}

// LoadConfig reads the environment into a Config and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                envOr("PORT", "8082"),
		RemoteURL:           os.Getenv("SYNC_REMOTE_URL"),
		RemoteAPIKey:        os.Getenv("SYNC_REMOTE_API_KEY"),
		RemoteCustomIP:      os.Getenv("SYNC_REMOTE_CUSTOM_IP"),
		RemoteDebug:         os.Getenv("SYNC_REMOTE_DEBUG") == "true",
		DefaultLangID:       envInt("DEFAULT_LANG", 1),
		HomeCategoryID:      int64(envInt("HOME_CATEGORY", 2)),
		RootSentinel:        envInt("ROOT_SENTINEL", 2),
		CoverageFeatureName: envOr("COVERAGE_FEATURE", "m2"),
		UnitPriceMax:        envFloat("UNIT_PRICE_MAX", 1e6),
		MinImageBytes:       envInt("MIN_IMAGE_BYTES", 1024),
		ImageDir:            envOr("IMAGE_DIR", "./data/img"),
		LogDir:              envOr("LOG_DIR", "./data/logs"),
		RedisURL:            os.Getenv("REDIS_URL"),
	}

	for _, part := range strings.Split(os.Getenv("LANG_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("LANG_IDS: invalid language id %q", part)
		}
		cfg.LangIDs = append(cfg.LangIDs, id)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
