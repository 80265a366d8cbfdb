package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress    string `mapstructure:"SERVER_ADDRESS"`
	GinMode          string `mapstructure:"GIN_MODE"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	LogFormat        string `mapstructure:"LOG_FORMAT"`
	PointsSource     string `mapstructure:"POINTS_SOURCE"`
	PointsFile       string `mapstructure:"POINTS_FILE"`
	ReferenceFile    string `mapstructure:"REFERENCE_FILE"`
	DBSource         string `mapstructure:"DB_SOURCE"`
	RankingLimit     int    `mapstructure:"RANKING_LIMIT"`
	RankingPrecision int    `mapstructure:"RANKING_PRECISION"`
}

const (
	PointsSourceFile     = "file"
	PointsSourcePostgres = "postgres"
)

var defaults = map[string]any{
	"SERVER_ADDRESS":    "0.0.0.0:8080",
	"GIN_MODE":          "release",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "console",
	"POINTS_SOURCE":     PointsSourceFile,
	"POINTS_FILE":       "data/geopoints.json",
	"REFERENCE_FILE":    "data/user_location.json",
	"DB_SOURCE":         "",
	"RANKING_LIMIT":     10,
	"RANKING_PRECISION": 2,
}

// LoadConfig reads app.env from path. Environment variables override file values
// and a missing file leaves the defaults in place.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	return config, config.Validate()
}

// Validate checks values that would otherwise fail later at request time
func (c Config) Validate() error {
	if c.RankingLimit <= 0 {
		return fmt.Errorf("config: RANKING_LIMIT must be positive, got %d", c.RankingLimit)
	}

	switch c.PointsSource {
	case PointsSourceFile:
		if c.PointsFile == "" {
			return fmt.Errorf("config: POINTS_FILE is required for the file source")
		}
	case PointsSourcePostgres:
		if c.DBSource == "" {
			return fmt.Errorf("config: DB_SOURCE is required for the postgres source")
		}
	default:
		return fmt.Errorf("config: unknown POINTS_SOURCE %q", c.PointsSource)
	}

	if c.ReferenceFile == "" {
		return fmt.Errorf("config: REFERENCE_FILE is required")
	}
	return nil
}
