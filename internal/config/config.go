package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "POPDASH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Watch     WatchConfig     `yaml:"watch" envconfig:"WATCH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"20s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"100"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/popdash.log"`
}

// PathsConfig names the data directory and the six source files inside it.
// Relative paths resolve against BaseDir, or the working directory when
// BaseDir is empty.
type PathsConfig struct {
	BaseDir            string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir            string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReasonsCSV         string `yaml:"reasons_csv" envconfig:"REASONS_CSV" default:"저출산_문제.csv"`
	BirthRateXLSX      string `yaml:"birth_rate_xlsx" envconfig:"BIRTH_RATE_XLSX" default:"합계출산율.xlsx"`
	SeniorRatioXLSX    string `yaml:"senior_ratio_xlsx" envconfig:"SENIOR_RATIO_XLSX" default:"우리나라_노인인구.xlsx"`
	AgeCompositionXLSX string `yaml:"age_composition_xlsx" envconfig:"AGE_COMPOSITION_XLSX" default:"연령구분비율.xlsx"`
	TutoringCostXLSX   string `yaml:"tutoring_cost_xlsx" envconfig:"TUTORING_COST_XLSX" default:"월급과연도별_사교육비용_추이.xlsx"`
	PopulationCSV      string `yaml:"population_csv" envconfig:"POPULATION_CSV" default:"주요_인구지표_성비_인구성장률_인구구조_부양비_등_전국.csv"`
}

// ChartsConfig holds the tunables of the chart routines
type ChartsConfig struct {
	TutoringYearMin int           `yaml:"tutoring_year_min" envconfig:"TUTORING_YEAR_MIN" default:"2020"`
	TutoringYearMax int           `yaml:"tutoring_year_max" envconfig:"TUTORING_YEAR_MAX" default:"2024"`
	FrameDuration   time.Duration `yaml:"frame_duration" envconfig:"FRAME_DURATION" default:"500ms"`
	ImageWidth      int           `yaml:"image_width" envconfig:"IMAGE_WIDTH" default:"960"`
	ImageHeight     int           `yaml:"image_height" envconfig:"IMAGE_HEIGHT" default:"540"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
}

// WatchConfig controls source file change detection
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL" default:"5s"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from the given YAML file (if non-empty and
// present) with environment variables taking precedence.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays explicitly set environment variables on top of the
// file config. envconfig fills defaults for unset variables, so a value only
// wins when its variable is present in the environment.
func mergeConfigs(fileConfig, envConfig Config) Config {
	merged := fileConfig

	pick := func(env string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + env)
		return ok
	}

	if pick("SERVER_PORT") || merged.Server.Port == 0 {
		merged.Server.Port = envConfig.Server.Port
	}
	if pick("SERVER_READ_TIMEOUT") || merged.Server.ReadTimeout == 0 {
		merged.Server.ReadTimeout = envConfig.Server.ReadTimeout
	}
	if pick("SERVER_WRITE_TIMEOUT") || merged.Server.WriteTimeout == 0 {
		merged.Server.WriteTimeout = envConfig.Server.WriteTimeout
	}
	if pick("SERVER_IDLE_TIMEOUT") || merged.Server.IdleTimeout == 0 {
		merged.Server.IdleTimeout = envConfig.Server.IdleTimeout
	}
	if pick("SERVER_SHUTDOWN_TIMEOUT") || merged.Server.ShutdownTimeout == 0 {
		merged.Server.ShutdownTimeout = envConfig.Server.ShutdownTimeout
	}
	if pick("SERVER_REQUEST_TIMEOUT") || merged.Server.RequestTimeout == 0 {
		merged.Server.RequestTimeout = envConfig.Server.RequestTimeout
	}

	if pick("SECURITY_ALLOWED_ORIGINS") || len(merged.Security.AllowedOrigins) == 0 {
		merged.Security.AllowedOrigins = envConfig.Security.AllowedOrigins
	}
	if pick("SECURITY_ENABLE_CORS") {
		merged.Security.EnableCORS = envConfig.Security.EnableCORS
	}
	if pick("SECURITY_RATE_LIMIT_ENABLED") {
		merged.Security.RateLimit.Enabled = envConfig.Security.RateLimit.Enabled
	}
	if pick("SECURITY_RATE_LIMIT_RPS") || merged.Security.RateLimit.RPS == 0 {
		merged.Security.RateLimit.RPS = envConfig.Security.RateLimit.RPS
	}
	if pick("SECURITY_RATE_LIMIT_BURST") || merged.Security.RateLimit.Burst == 0 {
		merged.Security.RateLimit.Burst = envConfig.Security.RateLimit.Burst
	}

	if pick("LOGGING_LEVEL") || merged.Logging.Level == "" {
		merged.Logging.Level = envConfig.Logging.Level
	}
	if pick("LOGGING_FORMAT") || merged.Logging.Format == "" {
		merged.Logging.Format = envConfig.Logging.Format
	}
	if pick("LOGGING_OUTPUT") || merged.Logging.Output == "" {
		merged.Logging.Output = envConfig.Logging.Output
	}
	if pick("LOGGING_FILE_PATH") || merged.Logging.FilePath == "" {
		merged.Logging.FilePath = envConfig.Logging.FilePath
	}

	mergeString := func(env string, dst *string, envValue string) {
		if pick(env) || *dst == "" {
			*dst = envValue
		}
	}
	mergeString("PATHS_BASE_DIR", &merged.Paths.BaseDir, envConfig.Paths.BaseDir)
	mergeString("PATHS_DATA_DIR", &merged.Paths.DataDir, envConfig.Paths.DataDir)
	mergeString("PATHS_REASONS_CSV", &merged.Paths.ReasonsCSV, envConfig.Paths.ReasonsCSV)
	mergeString("PATHS_BIRTH_RATE_XLSX", &merged.Paths.BirthRateXLSX, envConfig.Paths.BirthRateXLSX)
	mergeString("PATHS_SENIOR_RATIO_XLSX", &merged.Paths.SeniorRatioXLSX, envConfig.Paths.SeniorRatioXLSX)
	mergeString("PATHS_AGE_COMPOSITION_XLSX", &merged.Paths.AgeCompositionXLSX, envConfig.Paths.AgeCompositionXLSX)
	mergeString("PATHS_TUTORING_COST_XLSX", &merged.Paths.TutoringCostXLSX, envConfig.Paths.TutoringCostXLSX)
	mergeString("PATHS_POPULATION_CSV", &merged.Paths.PopulationCSV, envConfig.Paths.PopulationCSV)

	if pick("CHARTS_TUTORING_YEAR_MIN") || merged.Charts.TutoringYearMin == 0 {
		merged.Charts.TutoringYearMin = envConfig.Charts.TutoringYearMin
	}
	if pick("CHARTS_TUTORING_YEAR_MAX") || merged.Charts.TutoringYearMax == 0 {
		merged.Charts.TutoringYearMax = envConfig.Charts.TutoringYearMax
	}
	if pick("CHARTS_FRAME_DURATION") || merged.Charts.FrameDuration == 0 {
		merged.Charts.FrameDuration = envConfig.Charts.FrameDuration
	}
	if pick("CHARTS_IMAGE_WIDTH") || merged.Charts.ImageWidth == 0 {
		merged.Charts.ImageWidth = envConfig.Charts.ImageWidth
	}
	if pick("CHARTS_IMAGE_HEIGHT") || merged.Charts.ImageHeight == 0 {
		merged.Charts.ImageHeight = envConfig.Charts.ImageHeight
	}

	mergeString("TELEMETRY_ENVIRONMENT", &merged.Telemetry.Environment, envConfig.Telemetry.Environment)
	mergeString("TELEMETRY_TRACE_EXPORTER", &merged.Telemetry.TraceExporter, envConfig.Telemetry.TraceExporter)
	mergeString("TELEMETRY_METRIC_EXPORTER", &merged.Telemetry.MetricExporter, envConfig.Telemetry.MetricExporter)
	if pick("TELEMETRY_SAMPLE_RATIO") || merged.Telemetry.SampleRatio == 0 {
		merged.Telemetry.SampleRatio = envConfig.Telemetry.SampleRatio
	}

	if pick("WATCH_ENABLED") {
		merged.Watch.Enabled = envConfig.Watch.Enabled
	}
	if pick("WATCH_INTERVAL") || merged.Watch.Interval == 0 {
		merged.Watch.Interval = envConfig.Watch.Interval
	}

	return merged
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Charts.TutoringYearMin > c.Charts.TutoringYearMax {
		return fmt.Errorf("tutoring year range is empty: %d > %d",
			c.Charts.TutoringYearMin, c.Charts.TutoringYearMax)
	}

	if c.Charts.FrameDuration < 0 {
		return fmt.Errorf("frame duration must not be negative")
	}

	if c.Watch.Enabled && c.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	switch c.Telemetry.MetricExporter {
	case "prometheus", "none":
	default:
		return fmt.Errorf("unsupported metric exporter: %s", c.Telemetry.MetricExporter)
	}

	// Logs are always JSON
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/popdash.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/popdash.log",
		},
		Paths: PathsConfig{
			DataDir:            DefaultDataDir,
			ReasonsCSV:         "저출산_문제.csv",
			BirthRateXLSX:      "합계출산율.xlsx",
			SeniorRatioXLSX:    "우리나라_노인인구.xlsx",
			AgeCompositionXLSX: "연령구분비율.xlsx",
			TutoringCostXLSX:   "월급과연도별_사교육비용_추이.xlsx",
			PopulationCSV:      "주요_인구지표_성비_인구성장률_인구구조_부양비_등_전국.csv",
		},
		Charts: ChartsConfig{
			TutoringYearMin: 2020,
			TutoringYearMax: 2024,
			FrameDuration:   500 * time.Millisecond,
			ImageWidth:      960,
			ImageHeight:     540,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Interval: 5 * time.Second,
		},
	}
}
