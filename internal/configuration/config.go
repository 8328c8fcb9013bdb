package configuration

import (
	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"pricecompare/internal/logger"
	"strings"
	"time"
)

const minAlertCheckInterval = 15 * time.Second

type Config struct {
	ServerAddress      string        `json:"server_address"`
	DatabaseURI        string        `json:"database_uri"`
	DatabaseName       string        `json:"database_name"`
	RedisAddress       string        `json:"redis_address"`
	RedisPassword      string        `json:"-"`
	RedisDB            int           `json:"redis_db"`
	CacheTTL           time.Duration `json:"cache_ttl"`
	LogLevel           logger.Level  `json:"log_level"`
	LogFile            string        `json:"log_file"`
	AlertCheckInterval time.Duration `json:"alert_check_interval"`
	AlertCheckWorkers  int           `json:"alert_check_workers"`
	AuthSecretKey      jwk.Key       `json:"-"`
	AdminPasswordHash  []byte        `json:"-"`
	TokenTTL           time.Duration `json:"token_ttl"`
	CORSOrigins        []string      `json:"cors_origins"`
	HTTPClientTimeout  time.Duration `json:"http_client_timeout"`
	EbayClientID       string        `json:"ebay_client_id"`
	EbayClientSecret   string        `json:"-"`
	EbayMarketplaceID  string        `json:"ebay_marketplace_id"`
	SerpAPIKey         string        `json:"-"`
	UseSerpAPI         bool          `json:"use_serpapi"`
	SearchLimit        int           `json:"search_limit"`
	AlertWebhookURL    string        `json:"alert_webhook_url"`
}

type tomlConfig struct {
	ServerAddress      string   `toml:"server_address"`
	DatabaseURI        string   `toml:"database_uri"`
	DatabaseName       string   `toml:"database_name"`
	RedisAddress       string   `toml:"redis_address"`
	RedisPassword      string   `toml:"redis_password"`
	RedisDB            int      `toml:"redis_db"`
	CacheTTL           string   `toml:"cache_ttl"`
	LogLevel           string   `toml:"log_level"`
	LogFile            string   `toml:"log_file"`
	AlertCheckInterval string   `toml:"alert_check_interval"`
	AlertCheckWorkers  int      `toml:"alert_check_workers"`
	AuthSecretKey      string   `toml:"auth_secret_key"`
	AdminPasswordHash  string   `toml:"admin_password_hash"`
	TokenTTL           string   `toml:"token_ttl"`
	CORSOrigins        []string `toml:"cors_origins"`
	HTTPClientTimeout  string   `toml:"http_client_timeout"`
	EbayClientID       string   `toml:"ebay_client_id"`
	EbayClientSecret   string   `toml:"ebay_client_secret"`
	EbayMarketplaceID  string   `toml:"ebay_marketplace_id"`
	SerpAPIKey         string   `toml:"serpapi_key"`
	UseSerpAPI         bool     `toml:"use_serpapi"`
	SearchLimit        int      `toml:"search_limit"`
	AlertWebhookURL    string   `toml:"alert_webhook_url"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}
	return tc.toConfig()
}

func (tc tomlConfig) toConfig() (*Config, error) {
	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}
	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}
	if tc.DatabaseName == "" {
		tc.DatabaseName = "price_compare_db"
	}
	if tc.RedisDB < 0 {
		return nil, errors.Errorf("redis_db must not be negative: %d", tc.RedisDB)
	}

	cacheTTL, err := parseDuration("cache_ttl", tc.CacheTTL, 10*time.Minute)
	if err != nil {
		return nil, err
	}

	if tc.LogLevel == "" {
		tc.LogLevel = logger.LevelInfo.String()
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse log_level")
	}

	alertCheckInterval, err := parseDuration("alert_check_interval", tc.AlertCheckInterval, 0)
	if err != nil {
		return nil, err
	}
	if alertCheckInterval != 0 && alertCheckInterval < minAlertCheckInterval {
		return nil, errors.Errorf("alert_check_interval too short (%v), minimum interval: %v",
			alertCheckInterval, minAlertCheckInterval)
	}
	if tc.AlertCheckWorkers == 0 {
		tc.AlertCheckWorkers = 4
	} else if tc.AlertCheckWorkers < 0 {
		return nil, errors.Errorf("alert_check_workers must be positive: %d", tc.AlertCheckWorkers)
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	var adminPasswordHash []byte
	if tc.AdminPasswordHash != "" {
		adminPasswordHash = []byte(tc.AdminPasswordHash)
		if _, err = bcrypt.Cost(adminPasswordHash); err != nil {
			return nil, errors.Wrap(err, "admin_password_hash is not a bcrypt hash")
		}
	}

	tokenTTL, err := parseDuration("token_ttl", tc.TokenTTL, 24*time.Hour)
	if err != nil {
		return nil, err
	}

	if len(tc.CORSOrigins) == 0 {
		tc.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	httpClientTimeout, err := parseDuration("http_client_timeout", tc.HTTPClientTimeout, 15*time.Second)
	if err != nil {
		return nil, err
	}

	if tc.EbayMarketplaceID == "" {
		tc.EbayMarketplaceID = "EBAY_US"
	}
	if (tc.EbayClientID == "") != (tc.EbayClientSecret == "") {
		return nil, errors.New("ebay_client_id and ebay_client_secret must be set together")
	}
	if tc.UseSerpAPI && tc.SerpAPIKey == "" {
		return nil, errors.New("use_serpapi is enabled but serpapi_key is not set")
	}
	if tc.SearchLimit == 0 {
		tc.SearchLimit = 5
	} else if tc.SearchLimit < 0 || tc.SearchLimit > 50 {
		return nil, errors.Errorf("search_limit out of range (1-50): %d", tc.SearchLimit)
	}

	return &Config{
		ServerAddress:      tc.ServerAddress,
		DatabaseURI:        tc.DatabaseURI,
		DatabaseName:       tc.DatabaseName,
		RedisAddress:       tc.RedisAddress,
		RedisPassword:      tc.RedisPassword,
		RedisDB:            tc.RedisDB,
		CacheTTL:           cacheTTL,
		LogLevel:           logLevel,
		LogFile:            tc.LogFile,
		AlertCheckInterval: alertCheckInterval,
		AlertCheckWorkers:  tc.AlertCheckWorkers,
		AuthSecretKey:      authSecretKey,
		AdminPasswordHash:  adminPasswordHash,
		TokenTTL:           tokenTTL,
		CORSOrigins:        tc.CORSOrigins,
		HTTPClientTimeout:  httpClientTimeout,
		EbayClientID:       tc.EbayClientID,
		EbayClientSecret:   tc.EbayClientSecret,
		EbayMarketplaceID:  tc.EbayMarketplaceID,
		SerpAPIKey:         tc.SerpAPIKey,
		UseSerpAPI:         tc.UseSerpAPI,
		SearchLimit:        tc.SearchLimit,
		AlertWebhookURL:    strings.TrimSpace(tc.AlertWebhookURL),
	}, nil
}

func parseDuration(key string, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s: %s", key, s)
	}
	if d < 0 {
		return 0, errors.Errorf("%s must not be negative: %v", key, d)
	}
	return d, nil
}
