package config

import (
	"errors"
	"fmt"

	"cardwise/internal/matcher"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BankSource points a bank id at the URL its offer page is fetched from when
// scraping remotely instead of reading local HTML files. The optional
// selector names the offer container for headless fetches.
type BankSource struct {
	ID       string `mapstructure:"id"`
	URL      string `mapstructure:"url"`
	Selector string `mapstructure:"selector"`
}

// Config holds the application configuration parameters.
type Config struct {
	DBConn         string // empty when no database is configured
	HTMLDir        string
	MatchThreshold float64
	Banks          []BankSource
	AIAPIKey       string
}

// Configuration keys, resolvable from config.yaml or CARDWISE_-prefixed
// environment variables.
const (
	DBHostKey         = "DB_HOST"
	DBPortKey         = "DB_PORT"
	DBUserKey         = "DB_USER"
	DBPasswordKey     = "DB_PASSWORD"
	DBNameKey         = "DB_NAME"
	HTMLDirKey        = "HTML_DIR"
	MatchThresholdKey = "MATCH_THRESHOLD"
	BanksKey          = "banks"
	AIAPIKeyName      = "AI_API_KEY"
)

// Init reads config.yaml (optional) and the environment, and assembles the
// runtime configuration. A missing database configuration is not fatal here:
// the CLI can run against the in-memory repository, the API server checks
// for a DSN itself.
func Init(logger *zap.Logger) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("config.yaml not found, relying on defaults and environment")
	}

	viper.SetEnvPrefix("CARDWISE")
	viper.AutomaticEnv()

	viper.SetDefault(HTMLDirKey, "data/htmls")
	viper.SetDefault(MatchThresholdKey, matcher.DefaultThreshold)

	var banks []BankSource
	if err := viper.UnmarshalKey(BanksKey, &banks); err != nil {
		return nil, fmt.Errorf("could not unmarshal banks configuration: %w", err)
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed", zap.String("file", e.Name))
	})
	viper.WatchConfig()

	return &Config{
		DBConn:         buildDSN(),
		HTMLDir:        viper.GetString(HTMLDirKey),
		MatchThreshold: viper.GetFloat64(MatchThresholdKey),
		Banks:          banks,
		AIAPIKey:       viper.GetString(AIAPIKeyName),
	}, nil
}

// buildDSN constructs the PostgreSQL DSN from individual config values, or
// returns "" when the mandatory pieces are absent.
func buildDSN() string {
	host := viper.GetString(DBHostKey)
	user := viper.GetString(DBUserKey)
	dbname := viper.GetString(DBNameKey)
	if host == "" || user == "" || dbname == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, viper.GetString(DBPasswordKey), dbname, viper.GetString(DBPortKey),
	)
}

// SourceURLs flattens the configured bank sources into the id -> URL map the
// remote document sources consume.
func (c *Config) SourceURLs() map[string]string {
	if len(c.Banks) == 0 {
		return nil
	}
	urls := make(map[string]string, len(c.Banks))
	for _, b := range c.Banks {
		urls[b.ID] = b.URL
	}
	return urls
}

// SourceSelectors flattens the configured bank sources into the id ->
// container selector map the headless source consumes. Banks without a
// configured selector are omitted and fall back to the source default.
func (c *Config) SourceSelectors() map[string]string {
	selectors := make(map[string]string, len(c.Banks))
	for _, b := range c.Banks {
		if b.Selector != "" {
			selectors[b.ID] = b.Selector
		}
	}
	if len(selectors) == 0 {
		return nil
	}
	return selectors
}
