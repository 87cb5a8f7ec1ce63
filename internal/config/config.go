// Package config loads server configuration from .env files, environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"timeframe-chart/internal/domain"
)

// Data source kinds.
const (
	SourceFile       = "file"
	SourceHTTP       = "http"
	SourcePostgres   = "postgres"
	SourceClickhouse = "clickhouse"
	SourceMemory     = "memory"
)

// Config holds server settings.
type Config struct {
	HTTPAddr string `validate:"required"`

	DataSource string `validate:"oneof=file http postgres clickhouse memory"`
	DataURL    string `validate:"required_if=DataSource http"`
	DataPath   string `validate:"required_if=DataSource http"`
	DataFile   string `validate:"required_if=DataSource file"`

	SeriesID   string `validate:"required"`
	SeriesFrom string
	SeriesTo   string

	PostgresDSN   string `validate:"required_if=DataSource postgres"`
	ClickhouseDSN string `validate:"required_if=DataSource clickhouse"`
	RunMigrations bool

	ChartWidth         int    `validate:"min=100,max=8000"`
	ChartHeight        int    `validate:"min=100,max=8000"`
	ChartTitle         string `validate:"max=200"`
	DefaultGranularity string `validate:"granularity"`

	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		HTTPAddr:           ":8080",
		DataSource:         SourceFile,
		DataPath:           "/data.json",
		DataFile:           "data.json",
		SeriesID:           "default",
		ChartWidth:         800,
		ChartHeight:        400,
		DefaultGranularity: "daily",
		ShutdownTimeout:    30 * time.Second,
	}
}

// LoadEnvFile loads variables from the given .env files (".env" when none given).
// Variables already present in the environment are not overridden.
// Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv overlays environment variables on Defaults.
func FromEnv() Config {
	cfg := Defaults()

	cfg.HTTPAddr = envString("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DataSource = strings.ToLower(envString("DATA_SOURCE", cfg.DataSource))
	cfg.DataURL = envString("DATA_URL", cfg.DataURL)
	cfg.DataPath = envString("DATA_PATH", cfg.DataPath)
	cfg.DataFile = envString("DATA_FILE", cfg.DataFile)
	cfg.SeriesID = envString("SERIES_ID", cfg.SeriesID)
	cfg.SeriesFrom = envString("SERIES_FROM", cfg.SeriesFrom)
	cfg.SeriesTo = envString("SERIES_TO", cfg.SeriesTo)
	cfg.PostgresDSN = envString("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.ClickhouseDSN = envString("CLICKHOUSE_DSN", cfg.ClickhouseDSN)
	cfg.RunMigrations = envBool("RUN_MIGRATIONS", cfg.RunMigrations)
	cfg.ChartWidth = envInt("CHART_WIDTH", cfg.ChartWidth)
	cfg.ChartHeight = envInt("CHART_HEIGHT", cfg.ChartHeight)
	cfg.ChartTitle = envString("CHART_TITLE", cfg.ChartTitle)
	cfg.DefaultGranularity = envString("DEFAULT_GRANULARITY", cfg.DefaultGranularity)
	cfg.ShutdownTimeout = envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	return cfg
}

// RegisterFlags binds flags to cfg, using its current values as defaults.
func RegisterFlags(flags *flag.FlagSet, cfg *Config) {
	flags.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	flags.StringVar(&cfg.DataSource, "data-source", cfg.DataSource, "Data source (file, http, postgres, clickhouse, memory)")
	flags.StringVar(&cfg.DataURL, "data-url", cfg.DataURL, "Base URL serving the series JSON")
	flags.StringVar(&cfg.DataPath, "data-path", cfg.DataPath, "Path of the series JSON under --data-url")
	flags.StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "Series JSON file (file source, memory seed)")
	flags.StringVar(&cfg.SeriesID, "series-id", cfg.SeriesID, "Series ID for database sources")
	flags.StringVar(&cfg.SeriesFrom, "series-from", cfg.SeriesFrom, "Lower timestamp bound for database sources")
	flags.StringVar(&cfg.SeriesTo, "series-to", cfg.SeriesTo, "Upper timestamp bound for database sources")
	flags.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flags.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	flags.BoolVar(&cfg.RunMigrations, "run-migrations", cfg.RunMigrations, "Apply schema migrations on start")
	flags.IntVar(&cfg.ChartWidth, "chart-width", cfg.ChartWidth, "Chart width in pixels")
	flags.IntVar(&cfg.ChartHeight, "chart-height", cfg.ChartHeight, "Chart height in pixels")
	flags.StringVar(&cfg.ChartTitle, "chart-title", cfg.ChartTitle, "Chart title")
	flags.StringVar(&cfg.DefaultGranularity, "granularity", cfg.DefaultGranularity, "Initial granularity (daily, weekly, monthly)")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")
}

// Granularity returns the parsed default granularity.
func (c Config) Granularity() domain.Granularity {
	g, err := domain.ParseGranularity(c.DefaultGranularity)
	if err != nil {
		return domain.GranularityRaw
	}
	return g
}

// Validate checks cfg for missing or out-of-range settings.
func (c Config) Validate() error {
	v := newValidator()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return NewValidationError(verrs)
		}
		return err
	}
	if c.DataSource == SourceHTTP {
		if err := v.Var(c.DataURL, "url"); err != nil {
			return &ValidationError{Errors: map[string]string{"DataURL": "DataURL must be a valid URL"}}
		}
	}
	return nil
}

// chartSize carries the same bounds as Config.ChartWidth and Config.ChartHeight.
type chartSize struct {
	Width  int `validate:"min=100,max=8000"`
	Height int `validate:"min=100,max=8000"`
}

// ValidateChartSize checks chart dimensions given outside Config.
func ValidateChartSize(width, height int) error {
	err := newValidator().Struct(chartSize{Width: width, Height: height})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return NewValidationError(verrs)
	}
	return err
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("granularity", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseGranularity(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidationError maps field names to readable messages.
type ValidationError struct {
	Errors map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, e.Errors[field])
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(messages, ", "))
}

// NewValidationError creates a ValidationError from validator.ValidationErrors.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	out := make(map[string]string, len(errs))

	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required", "required_if":
			out[field] = fmt.Sprintf("%s is required", field)
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of [%s]", field, err.Param())
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "gt":
			out[field] = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "granularity":
			out[field] = fmt.Sprintf("%s must be daily, weekly or monthly", field)
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return &ValidationError{Errors: out}
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
