// Package config holds the scanner configuration: detection thresholds,
// poll timings and credentials. Every tunable has a default; a YAML file
// overrides defaults, environment variables supply credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the full scanner configuration.
type Config struct {
	// Filters.
	MinLiquidity decimal.Decimal
	// MaxLiquidity zero means unbounded.
	MaxLiquidity decimal.Decimal
	MinAgeHours  decimal.Decimal
	MaxAgeHours  decimal.Decimal

	// Indicator thresholds.
	MinPriceMomentum     decimal.Decimal
	MinLiquidityGrowth   decimal.Decimal
	WeekOldLiqMultiplier decimal.Decimal
	MinLiqGrowth24h      decimal.Decimal
	MinVolumeSpike       decimal.Decimal
	MinTxnsForSpike      int

	// Alert gating.
	RealertWindow        time.Duration
	MaxAlertsPerTokenDay int

	// History retention.
	HistoryMaxAge time.Duration

	// Poll loop.
	PollInterval time.Duration
	FetchLimit   int

	// Enrichment.
	ActivityCacheTTL      time.Duration
	EnrichmentConcurrency int

	// Weekly summary.
	SummaryWeekday time.Weekday
	SummaryHourUTC int
	SummaryTopN    int

	// StateDir directory for the JSON state tables and the alert log.
	StateDir string
}

type configYaml struct {
	MinLiquidity          string   `yaml:"min_liquidity,omitempty"`
	MaxLiquidity          string   `yaml:"max_liquidity,omitempty"`
	MinAgeHours           string   `yaml:"min_age_hours,omitempty"`
	MaxAgeHours           string   `yaml:"max_age_hours,omitempty"`
	MinPriceMomentum      string   `yaml:"min_price_momentum,omitempty"`
	MinLiquidityGrowth    string   `yaml:"min_liquidity_growth,omitempty"`
	WeekOldLiqMultiplier  string   `yaml:"weekold_liq_multiplier,omitempty"`
	MinLiqGrowth24h       string   `yaml:"min_liq_growth_24h,omitempty"`
	MinVolumeSpike        string   `yaml:"min_volume_spike,omitempty"`
	MinTxnsForSpike       *int     `yaml:"min_txns_for_spike,omitempty"`
	RealertHours          *float64 `yaml:"realert_hours,omitempty"`
	MaxAlertsPerTokenDay  *int     `yaml:"max_alerts_per_token_per_day,omitempty"`
	HistoryMaxAgeHours    *float64 `yaml:"history_max_age_hours,omitempty"`
	PollInterval          string   `yaml:"poll_interval,omitempty"`
	FetchLimit            *int     `yaml:"fetch_limit,omitempty"`
	ActivityCacheTTL      string   `yaml:"activity_cache_ttl,omitempty"`
	EnrichmentConcurrency *int     `yaml:"enrichment_concurrency,omitempty"`
	SummaryWeekday        *int     `yaml:"summary_weekday,omitempty"`
	SummaryHourUTC        *int     `yaml:"summary_hour_utc,omitempty"`
	SummaryTopN           *int     `yaml:"summary_top_n,omitempty"`
	StateDir              string   `yaml:"state_dir,omitempty"`
}

// Default returns the configuration with every knob at its default value.
func Default() Config {
	return Config{
		MinLiquidity:          decimal.NewFromInt(200_000),
		MaxLiquidity:          decimal.Zero,
		MinAgeHours:           decimal.NewFromInt(1),
		MaxAgeHours:           decimal.NewFromInt(48),
		MinPriceMomentum:      decimal.NewFromFloat(0.20),
		MinLiquidityGrowth:    decimal.NewFromFloat(1.5),
		WeekOldLiqMultiplier:  decimal.NewFromInt(2),
		MinLiqGrowth24h:       decimal.NewFromFloat(1.5),
		MinVolumeSpike:        decimal.NewFromInt(3),
		MinTxnsForSpike:       10,
		RealertWindow:         6 * time.Hour,
		MaxAlertsPerTokenDay:  10,
		HistoryMaxAge:         200 * time.Hour,
		PollInterval:          300 * time.Second,
		FetchLimit:            100,
		ActivityCacheTTL:      60 * time.Second,
		EnrichmentConcurrency: 5,
		SummaryWeekday:        time.Sunday,
		SummaryHourUTC:        12,
		SummaryTopN:           10,
		StateDir:              "./state",
	}
}

// Load returns the default configuration overridden by the YAML file at
// path. An empty path returns plain defaults.
func Load(path string) (Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	var y configYaml
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return Config{}, errors.Wrap(err, "parse config file")
	}

	if err := applyYaml(&conf, y); err != nil {
		return Config{}, err
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}

	return conf, nil
}

func applyYaml(conf *Config, y configYaml) error {
	decimals := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"min_liquidity", y.MinLiquidity, &conf.MinLiquidity},
		{"max_liquidity", y.MaxLiquidity, &conf.MaxLiquidity},
		{"min_age_hours", y.MinAgeHours, &conf.MinAgeHours},
		{"max_age_hours", y.MaxAgeHours, &conf.MaxAgeHours},
		{"min_price_momentum", y.MinPriceMomentum, &conf.MinPriceMomentum},
		{"min_liquidity_growth", y.MinLiquidityGrowth, &conf.MinLiquidityGrowth},
		{"weekold_liq_multiplier", y.WeekOldLiqMultiplier, &conf.WeekOldLiqMultiplier},
		{"min_liq_growth_24h", y.MinLiqGrowth24h, &conf.MinLiqGrowth24h},
		{"min_volume_spike", y.MinVolumeSpike, &conf.MinVolumeSpike},
	}
	for _, d := range decimals {
		if d.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return errors.Wrapf(err, "incorrect '%s' param in yaml config", d.name)
		}
		*d.dst = v
	}

	if y.MinTxnsForSpike != nil {
		conf.MinTxnsForSpike = *y.MinTxnsForSpike
	}
	if y.RealertHours != nil {
		conf.RealertWindow = time.Duration(*y.RealertHours * float64(time.Hour))
	}
	if y.MaxAlertsPerTokenDay != nil {
		conf.MaxAlertsPerTokenDay = *y.MaxAlertsPerTokenDay
	}
	if y.HistoryMaxAgeHours != nil {
		conf.HistoryMaxAge = time.Duration(*y.HistoryMaxAgeHours * float64(time.Hour))
	}
	if y.PollInterval != "" {
		d, err := time.ParseDuration(y.PollInterval)
		if err != nil {
			return errors.Wrap(err, "incorrect 'poll_interval' param in yaml config")
		}
		conf.PollInterval = d
	}
	if y.FetchLimit != nil {
		conf.FetchLimit = *y.FetchLimit
	}
	if y.ActivityCacheTTL != "" {
		d, err := time.ParseDuration(y.ActivityCacheTTL)
		if err != nil {
			return errors.Wrap(err, "incorrect 'activity_cache_ttl' param in yaml config")
		}
		conf.ActivityCacheTTL = d
	}
	if y.EnrichmentConcurrency != nil {
		conf.EnrichmentConcurrency = *y.EnrichmentConcurrency
	}
	if y.SummaryWeekday != nil {
		conf.SummaryWeekday = time.Weekday(*y.SummaryWeekday)
	}
	if y.SummaryHourUTC != nil {
		conf.SummaryHourUTC = *y.SummaryHourUTC
	}
	if y.SummaryTopN != nil {
		conf.SummaryTopN = *y.SummaryTopN
	}
	if y.StateDir != "" {
		conf.StateDir = y.StateDir
	}

	return nil
}

// Validate rejects configurations that cannot drive the scanner.
func (c Config) Validate() error {
	if c.MinAgeHours.GreaterThan(c.MaxAgeHours) {
		return fmt.Errorf("min_age_hours %s exceeds max_age_hours %s", c.MinAgeHours, c.MaxAgeHours)
	}
	if !c.MaxLiquidity.IsZero() && c.MinLiquidity.GreaterThan(c.MaxLiquidity) {
		return fmt.Errorf("min_liquidity %s exceeds max_liquidity %s", c.MinLiquidity, c.MaxLiquidity)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.FetchLimit < 1 {
		return fmt.Errorf("fetch_limit must be at least 1, got %d", c.FetchLimit)
	}
	if c.MaxAlertsPerTokenDay < 1 {
		return fmt.Errorf("max_alerts_per_token_per_day must be at least 1, got %d", c.MaxAlertsPerTokenDay)
	}
	if c.SummaryHourUTC < 0 || c.SummaryHourUTC > 23 {
		return fmt.Errorf("summary_hour_utc must be within 0..23, got %d", c.SummaryHourUTC)
	}
	if c.EnrichmentConcurrency < 1 {
		return fmt.Errorf("enrichment_concurrency must be at least 1, got %d", c.EnrichmentConcurrency)
	}
	return nil
}

// Credentials are the secrets required at startup. Missing values are a
// fatal configuration error, never checked mid-run.
type Credentials struct {
	MoralisAPIKey    string
	TelegramBotToken string
	TelegramChatID   string
}

// CredentialsFromEnv reads credentials from the environment.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		MoralisAPIKey:    os.Getenv("MORALIS_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}
	if creds.MoralisAPIKey == "" {
		return Credentials{}, errors.New("MORALIS_API_KEY env is not set")
	}
	if creds.TelegramBotToken == "" {
		return Credentials{}, errors.New("TELEGRAM_BOT_TOKEN env is not set")
	}
	if creds.TelegramChatID == "" {
		return Credentials{}, errors.New("TELEGRAM_CHAT_ID env is not set")
	}
	return creds, nil
}
