package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"golang.org/x/crypto/bcrypt"
	"pricecompare/internal/logger"
)

func writeConfig(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	c.Assert(err, qt.IsNil)
	return path
}

func TestGetConfigDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := GetConfig(writeConfig(c, `auth_secret_key = "secret"`))
	c.Assert(err, qt.IsNil)

	c.Assert(cfg.ServerAddress, qt.Equals, "localhost:8888")
	c.Assert(cfg.DatabaseName, qt.Equals, "price_compare_db")
	c.Assert(cfg.CacheTTL, qt.Equals, 10*time.Minute)
	c.Assert(cfg.LogLevel, qt.Equals, logger.LevelInfo)
	c.Assert(cfg.AlertCheckInterval, qt.Equals, time.Duration(0))
	c.Assert(cfg.AlertCheckWorkers, qt.Equals, 4)
	c.Assert(cfg.TokenTTL, qt.Equals, 24*time.Hour)
	c.Assert(cfg.HTTPClientTimeout, qt.Equals, 15*time.Second)
	c.Assert(cfg.EbayMarketplaceID, qt.Equals, "EBAY_US")
	c.Assert(cfg.SearchLimit, qt.Equals, 5)
	c.Assert(cfg.CORSOrigins, qt.HasLen, 2)
	c.Assert(cfg.AuthSecretKey, qt.IsNotNil)
	c.Assert(cfg.AdminPasswordHash, qt.IsNil)
}

func TestGetConfigFull(t *testing.T) {
	c := qt.New(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	c.Assert(err, qt.IsNil)

	cfg, err := GetConfig(writeConfig(c, `
server_address = ":9000"
database_uri = "mongodb://db:27017"
database_name = "prices"
redis_address = "redis:6379"
redis_db = 2
cache_ttl = "1m"
log_level = "debug"
alert_check_interval = "30s"
alert_check_workers = 8
auth_secret_key = "secret"
admin_password_hash = "`+string(hash)+`"
token_ttl = "1h"
cors_origins = ["https://example.com"]
ebay_client_id = "id"
ebay_client_secret = "secret"
serpapi_key = "key"
use_serpapi = true
search_limit = 10
alert_webhook_url = " https://hooks.example.com/alerts "
`))
	c.Assert(err, qt.IsNil)

	c.Assert(cfg.ServerAddress, qt.Equals, ":9000")
	c.Assert(cfg.DatabaseName, qt.Equals, "prices")
	c.Assert(cfg.RedisAddress, qt.Equals, "redis:6379")
	c.Assert(cfg.RedisDB, qt.Equals, 2)
	c.Assert(cfg.CacheTTL, qt.Equals, time.Minute)
	c.Assert(cfg.LogLevel, qt.Equals, logger.LevelDebug)
	c.Assert(cfg.AlertCheckInterval, qt.Equals, 30*time.Second)
	c.Assert(cfg.AlertCheckWorkers, qt.Equals, 8)
	c.Assert(cfg.AdminPasswordHash, qt.DeepEquals, hash)
	c.Assert(cfg.TokenTTL, qt.Equals, time.Hour)
	c.Assert(cfg.CORSOrigins, qt.DeepEquals, []string{"https://example.com"})
	c.Assert(cfg.UseSerpAPI, qt.IsTrue)
	c.Assert(cfg.SearchLimit, qt.Equals, 10)
	c.Assert(cfg.AlertWebhookURL, qt.Equals, "https://hooks.example.com/alerts")
}

func TestGetConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing secret",
			content: `server_address = ":9000"`,
			errMsg:  "auth_secret_key is not set",
		},
		{
			name:    "interval too short",
			content: "auth_secret_key = \"s\"\nalert_check_interval = \"5s\"",
			errMsg:  "alert_check_interval too short.*",
		},
		{
			name:    "bad duration",
			content: "auth_secret_key = \"s\"\ncache_ttl = \"soon\"",
			errMsg:  "failed to parse cache_ttl.*",
		},
		{
			name:    "bad log level",
			content: "auth_secret_key = \"s\"\nlog_level = \"loud\"",
			errMsg:  "failed to parse log_level.*",
		},
		{
			name:    "half ebay credentials",
			content: "auth_secret_key = \"s\"\nebay_client_id = \"id\"",
			errMsg:  "ebay_client_id and ebay_client_secret must be set together",
		},
		{
			name:    "serpapi without key",
			content: "auth_secret_key = \"s\"\nuse_serpapi = true",
			errMsg:  "use_serpapi is enabled but serpapi_key is not set",
		},
		{
			name:    "plain admin password",
			content: "auth_secret_key = \"s\"\nadmin_password_hash = \"hunter2\"",
			errMsg:  "admin_password_hash is not a bcrypt hash.*",
		},
		{
			name:    "search limit",
			content: "auth_secret_key = \"s\"\nsearch_limit = 100",
			errMsg:  "search_limit out of range.*",
		},
		{
			name:    "negative workers",
			content: "auth_secret_key = \"s\"\nalert_check_workers = -1",
			errMsg:  "alert_check_workers must be positive.*",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := GetConfig(writeConfig(c, test.content))
			c.Assert(err, qt.ErrorMatches, test.errMsg)
		})
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := GetConfig(filepath.Join(c.TempDir(), "nope.toml"))
	c.Assert(err, qt.ErrorMatches, "failed to decode toml file.*")
}
