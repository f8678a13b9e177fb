package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// DedupPolicy selects how duplicated order IDs are resolved during cleaning.
type DedupPolicy string

const (
	// DedupKeepFirst keeps the first occurrence of a duplicated order ID.
	DedupKeepFirst DedupPolicy = "keep-first"
	// DedupKeepMaxNet keeps the occurrence with the highest qty*unit_price.
	DedupKeepMaxNet DedupPolicy = "keep-max-net"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputWorkbook string `yaml:"input_workbook" envconfig:"INPUT_WORKBOOK"`
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig contains the analytical policy knobs. Defaults reproduce
// the reference report exactly.
type PipelineConfig struct {
	DedupPolicy        DedupPolicy `yaml:"dedup_policy" envconfig:"DEDUP_POLICY" validate:"oneof=keep-first keep-max-net"`
	ParetoCap          int         `yaml:"pareto_cap" envconfig:"PARETO_CAP" validate:"gt=0"`
	AnomalyPercentile  float64     `yaml:"anomaly_percentile" envconfig:"ANOMALY_PERCENTILE" validate:"gt=0,lt=1"`
	AnomalyDiscountPct float64     `yaml:"anomaly_discount_pct" envconfig:"ANOMALY_DISCOUNT_PCT" validate:"gte=0,lte=100"`
	RFMTiers           int         `yaml:"rfm_tiers" envconfig:"RFM_TIERS" validate:"gte=2,lte=10"`
}

// Load loads configuration from environment variables and the default
// config file location. Environment variables take precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from the given YAML file (if it exists)
// with environment variables taking precedence.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("BIZPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
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

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.InputWorkbook == "" {
		envConfig.Paths.InputWorkbook = fileConfig.Paths.InputWorkbook
	}
	if envConfig.Paths.OutputDir == "" {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if envConfig.Paths.LogsDir == "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if envConfig.Pipeline.DedupPolicy == "" {
		envConfig.Pipeline.DedupPolicy = fileConfig.Pipeline.DedupPolicy
	}
	if envConfig.Pipeline.ParetoCap == 0 {
		envConfig.Pipeline.ParetoCap = fileConfig.Pipeline.ParetoCap
	}
	if envConfig.Pipeline.AnomalyPercentile == 0 {
		envConfig.Pipeline.AnomalyPercentile = fileConfig.Pipeline.AnomalyPercentile
	}
	if envConfig.Pipeline.AnomalyDiscountPct == 0 {
		envConfig.Pipeline.AnomalyDiscountPct = fileConfig.Pipeline.AnomalyDiscountPct
	}
	if envConfig.Pipeline.RFMTiers == 0 {
		envConfig.Pipeline.RFMTiers = fileConfig.Pipeline.RFMTiers
	}

	return envConfig
}

// applyDefaults fills any field left unset by both env and file.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = "logs/bizpulse.log"
	}
	if cfg.Paths.InputWorkbook == "" {
		cfg.Paths.InputWorkbook = "input_business_data.xlsx"
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "reports"
	}
	if cfg.Paths.LogsDir == "" {
		cfg.Paths.LogsDir = "logs"
	}
	if cfg.Pipeline.DedupPolicy == "" {
		cfg.Pipeline.DedupPolicy = DedupKeepFirst
	}
	if cfg.Pipeline.ParetoCap == 0 {
		cfg.Pipeline.ParetoCap = 200
	}
	if cfg.Pipeline.AnomalyPercentile == 0 {
		cfg.Pipeline.AnomalyPercentile = 0.995
	}
	if cfg.Pipeline.AnomalyDiscountPct == 0 {
		cfg.Pipeline.AnomalyDiscountPct = 40
	}
	if cfg.Pipeline.RFMTiers == 0 {
		cfg.Pipeline.RFMTiers = 5
	}
}

// validate validates the configuration using struct tags
func (c *Config) validate() error {
	v := validator.New()
	return v.Struct(c)
}

// getConfigFilePath returns the default config file location
func getConfigFilePath() string {
	if path := os.Getenv("BIZPULSE_CONFIG"); path != "" {
		return path
	}
	return "bizpulse.yaml"
}
