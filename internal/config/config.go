package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"opendoors/internal/balance"
	"opendoors/internal/duplicate"
	"opendoors/internal/logger"
	"opendoors/internal/partner"
	"opendoors/internal/period"
)

type Config struct {
	// Fiscal calendar
	FiscalYearStartMonth int
	FiscalYearStartDay   int

	// Balance configuration
	IncomeTaxRate    decimal.Decimal
	AmountTolerance  decimal.Decimal
	TaxCreditWhen    balance.TaxCreditWhen
	AggregateWorkers int

	// Duplicate matcher configuration
	DuplicateThreshold      float64
	DuplicateDateWindowDays int

	// Optional YAML file overriding the fiscal settings above
	FiscalSettingsFile string

	// Google Sheets Configuration
	GoogleSheetURL          string
	GoogleSheetWorksheet    string
	GoogleServiceAccountKey string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// FiscalSettings is the layout of FISCAL_SETTINGS_FILE. Omitted keys keep
// the environment value.
type FiscalSettings struct {
	FiscalYearStartMonth    *int     `yaml:"fiscal_year_start_month"`
	FiscalYearStartDay      *int     `yaml:"fiscal_year_start_day"`
	IncomeTaxRate           *string  `yaml:"income_tax_rate"`
	AmountTolerance         *string  `yaml:"amount_tolerance"`
	TaxCreditWhen           *string  `yaml:"tax_credit_when"`
	DuplicateThreshold      *float64 `yaml:"duplicate_threshold"`
	DuplicateDateWindowDays *int     `yaml:"duplicate_date_window_days"`
}

func Load() (*Config, error) {
	config := &Config{
		FiscalSettingsFile:      getEnv("FISCAL_SETTINGS_FILE", ""),
		GoogleSheetURL:          getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:    getEnv("GOOGLE_SHEET_WORKSHEET", "Facturas"),
		GoogleServiceAccountKey: getEnv("GOOGLE_SERVICE_ACCOUNT_KEY", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:           getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:               getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.FiscalYearStartMonth, err = getEnvInt("FISCAL_YEAR_START_MONTH", 1); err != nil {
		return nil, err
	}
	if config.FiscalYearStartDay, err = getEnvInt("FISCAL_YEAR_START_DAY", 1); err != nil {
		return nil, err
	}
	if config.IncomeTaxRate, err = getEnvDecimal("INCOME_TAX_RATE", "0.35"); err != nil {
		return nil, err
	}
	if config.AmountTolerance, err = getEnvDecimal("AMOUNT_TOLERANCE", "0.01"); err != nil {
		return nil, err
	}
	if config.TaxCreditWhen, err = parseCreditWhen(getEnv("TAX_CREDIT_WHEN", "negative")); err != nil {
		return nil, err
	}
	if config.AggregateWorkers, err = getEnvInt("AGGREGATE_WORKERS", 1); err != nil {
		return nil, err
	}
	if config.DuplicateThreshold, err = getEnvFloat("DUPLICATE_THRESHOLD", 0.8); err != nil {
		return nil, err
	}
	if config.DuplicateDateWindowDays, err = getEnvInt("DUPLICATE_DATE_WINDOW_DAYS", 7); err != nil {
		return nil, err
	}

	if config.FiscalSettingsFile != "" {
		if err := config.applySettingsFile(config.FiscalSettingsFile); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) applySettingsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fiscal settings %s: %w", path, err)
	}
	var s FiscalSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse fiscal settings %s: %w", path, err)
	}
	return c.Apply(s)
}

// Apply overrides the configuration with every key set in s.
func (c *Config) Apply(s FiscalSettings) error {
	if s.FiscalYearStartMonth != nil {
		c.FiscalYearStartMonth = *s.FiscalYearStartMonth
	}
	if s.FiscalYearStartDay != nil {
		c.FiscalYearStartDay = *s.FiscalYearStartDay
	}
	if s.IncomeTaxRate != nil {
		rate, err := decimal.NewFromString(*s.IncomeTaxRate)
		if err != nil {
			return fmt.Errorf("income_tax_rate %q: %w", *s.IncomeTaxRate, err)
		}
		c.IncomeTaxRate = rate
	}
	if s.AmountTolerance != nil {
		tol, err := decimal.NewFromString(*s.AmountTolerance)
		if err != nil {
			return fmt.Errorf("amount_tolerance %q: %w", *s.AmountTolerance, err)
		}
		c.AmountTolerance = tol
	}
	if s.TaxCreditWhen != nil {
		when, err := parseCreditWhen(*s.TaxCreditWhen)
		if err != nil {
			return err
		}
		c.TaxCreditWhen = when
	}
	if s.DuplicateThreshold != nil {
		c.DuplicateThreshold = *s.DuplicateThreshold
	}
	if s.DuplicateDateWindowDays != nil {
		c.DuplicateDateWindowDays = *s.DuplicateDateWindowDays
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.GetPeriodConfig().Validate(); err != nil {
		return err
	}
	if c.IncomeTaxRate.IsNegative() || c.IncomeTaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("INCOME_TAX_RATE must be within [0, 1], got %s", c.IncomeTaxRate)
	}
	if !c.AmountTolerance.IsPositive() {
		return fmt.Errorf("AMOUNT_TOLERANCE must be positive, got %s", c.AmountTolerance)
	}
	if c.AggregateWorkers < 1 {
		return fmt.Errorf("AGGREGATE_WORKERS must be at least 1, got %d", c.AggregateWorkers)
	}
	if err := c.GetDuplicateConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetPeriodConfig returns the fiscal calendar.
func (c *Config) GetPeriodConfig() period.Config {
	return period.Config{
		StartMonth: time.Month(c.FiscalYearStartMonth),
		StartDay:   c.FiscalYearStartDay,
	}
}

// GetBalanceConfig returns the aggregator settings.
func (c *Config) GetBalanceConfig() balance.Config {
	return balance.Config{
		IncomeTaxRate: c.IncomeTaxRate,
		Tolerance:     c.AmountTolerance,
		CreditWhen:    c.TaxCreditWhen,
		Workers:       c.AggregateWorkers,
	}
}

// GetPartnerConfig returns the apportioner settings.
func (c *Config) GetPartnerConfig() partner.Config {
	return partner.Config{
		Tolerance: c.AmountTolerance,
		Workers:   c.AggregateWorkers,
	}
}

// GetDuplicateConfig returns the matcher settings on top of the default weights.
func (c *Config) GetDuplicateConfig() duplicate.Config {
	cfg := duplicate.DefaultConfig()
	cfg.Threshold = c.DuplicateThreshold
	cfg.DateWindowDays = c.DuplicateDateWindowDays
	return cfg
}

func parseCreditWhen(value string) (balance.TaxCreditWhen, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "negative", "":
		return balance.CreditWhenNegative, nil
	case "positive":
		return balance.CreditWhenPositive, nil
	default:
		return 0, fmt.Errorf("TAX_CREDIT_WHEN must be negative or positive, got %q", value)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, value)
	}
	return f, nil
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number, got %q", key, value)
	}
	return d, nil
}
