package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/finclose-org/finclose/internal/db"
	"github.com/finclose-org/finclose/internal/domain"
	"github.com/spf13/viper"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Config is the full run configuration: the close month, currency policy,
// gating threshold, accepted date formats, and the output destinations.
type Config struct {
	Month            string
	BaseCurrency     string
	FailOn           domain.Threshold
	DateFormats      []string
	RateTableVersion string

	RawDir       string
	ReferenceDir string
	CuratedDir   string

	Warehouse WarehouseConfig
}

// WarehouseConfig controls the optional Postgres sink.
type WarehouseConfig struct {
	Enabled  bool
	Database db.Config
}

// Default returns the configuration defaults before file and env overrides.
func Default() Config {
	return Config{
		BaseCurrency: "USD",
		FailOn:       domain.ThresholdError,
		DateFormats:  []string{"2006-01-02", "2006/01/02", "01/02/2006"},
		RawDir:       "data/raw",
		ReferenceDir: "data/reference",
		CuratedDir:   "data/curated",
		Warehouse: WarehouseConfig{
			Enabled:  false,
			Database: db.DefaultConfig(),
		},
	}
}

// Load reads config.yaml from configPath, applies environment overrides
// (prefix FINCLOSE, e.g. FINCLOSE_MONTH), and validates the result.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("FINCLOSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("month")
	v.BindEnv("base_currency")
	v.BindEnv("fail_on")
	v.BindEnv("fx.version")
	v.BindEnv("paths.raw")
	v.BindEnv("paths.reference")
	v.BindEnv("paths.curated")
	v.BindEnv("warehouse.enabled")
	v.BindEnv("warehouse.host")
	v.BindEnv("warehouse.port")
	v.BindEnv("warehouse.user")
	v.BindEnv("warehouse.password")
	v.BindEnv("warehouse.dbname")
	v.BindEnv("warehouse.sslmode")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		// No config.yaml: defaults plus env vars.
	}

	if v.IsSet("month") {
		cfg.Month = v.GetString("month")
	}
	if v.IsSet("base_currency") {
		cfg.BaseCurrency = strings.ToUpper(v.GetString("base_currency"))
	}
	if v.IsSet("fail_on") {
		threshold, err := domain.ParseThreshold(v.GetString("fail_on"))
		if err != nil {
			return cfg, err
		}
		cfg.FailOn = threshold
	}
	if v.IsSet("date_formats") {
		cfg.DateFormats = v.GetStringSlice("date_formats")
	}
	if v.IsSet("fx.version") {
		cfg.RateTableVersion = v.GetString("fx.version")
	}
	if v.IsSet("paths.raw") {
		cfg.RawDir = v.GetString("paths.raw")
	}
	if v.IsSet("paths.reference") {
		cfg.ReferenceDir = v.GetString("paths.reference")
	}
	if v.IsSet("paths.curated") {
		cfg.CuratedDir = v.GetString("paths.curated")
	}
	if v.IsSet("warehouse.enabled") {
		cfg.Warehouse.Enabled = v.GetBool("warehouse.enabled")
	}
	if v.IsSet("warehouse.host") {
		cfg.Warehouse.Database.Host = v.GetString("warehouse.host")
	}
	if v.IsSet("warehouse.port") {
		cfg.Warehouse.Database.Port = v.GetInt("warehouse.port")
	}
	if v.IsSet("warehouse.user") {
		cfg.Warehouse.Database.User = v.GetString("warehouse.user")
	}
	if v.IsSet("warehouse.password") {
		cfg.Warehouse.Database.Password = v.GetString("warehouse.password")
	}
	if v.IsSet("warehouse.dbname") {
		cfg.Warehouse.Database.DBName = v.GetString("warehouse.dbname")
	}
	if v.IsSet("warehouse.sslmode") {
		cfg.Warehouse.Database.SSLMode = v.GetString("warehouse.sslmode")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants shared by Load and callers
// that build a Config directly (tests, embedding callers).
func (c Config) Validate() error {
	if !monthPattern.MatchString(c.Month) {
		return fmt.Errorf("month must be YYYY-MM; got %q", c.Month)
	}
	if strings.TrimSpace(c.BaseCurrency) == "" {
		return fmt.Errorf("base currency is required")
	}
	if _, err := domain.ParseThreshold(string(c.FailOn)); err != nil {
		return err
	}
	if len(c.DateFormats) == 0 {
		return fmt.Errorf("at least one date format is required")
	}
	return nil
}
