package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"pricecompare/internal/client"
	"pricecompare/internal/configuration"
	"pricecompare/internal/database"
	"pricecompare/internal/logger"
	"pricecompare/internal/server"
)

type app struct {
	config *configuration.Config
	logger *logger.Logger
	server server.Server

	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp loads the configuration and connects everything the commands need. The
// returned app must be closed even when an error is returned.
func newApp(ctx context.Context, configPath string) (*app, error) {
	a := &app{}
	logOutput := io.Writer(os.Stdout)
	l := logger.NewLogger(logger.LevelInfo, logOutput)
	a.logger = l

	config, err := configuration.GetConfig(configPath)
	if err != nil {
		l.Error("Error getting configuration from", configPath+":", err)
		return a, err
	}
	a.config = config

	if config.LogFile != "" {
		logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			l.Error("Error opening log file:", err)
			return a, errors.Wrapf(err, "error opening log file: %s", config.LogFile)
		}
		a.closers = append(a.closers, func() {
			if err := logFile.Close(); err != nil {
				l.Error("Error closing log file:", err)
			}
		})
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	l = logger.NewLogger(config.LogLevel, logOutput)
	a.logger = l

	if logger.LevelDebug.Enabled(config.LogLevel) {
		conf, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			l.Error("Error marshalling Config to JSON:", err)
			return a, errors.Wrap(err, "error marshalling config")
		}
		l.Debugf("Config:\n%s", conf)
	}

	l.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(ctx, config.DatabaseURI, config.DatabaseName)
	if err != nil {
		l.Error("Error connecting to DB:", err)
		return a, err
	}
	a.closers = append(a.closers, func() {
		if err := dbConn.Disconnect(context.Background()); err != nil {
			l.Error("Error disconnecting from DB:", err)
		}
	})

	rdb := newRedis(ctx, config, l)
	if rdb != nil {
		a.closers = append(a.closers, func() {
			if err := rdb.Close(); err != nil {
				l.Error("Error closing redis client:", err)
			}
		})
	}

	a.server = newServer(config, dbConn, rdb, l)
	return a, nil
}

// newRedis returns nil when redis is not configured or unreachable, the retailer
// client then runs without a cache.
func newRedis(ctx context.Context, config *configuration.Config, l *logger.Logger) *redis.Client {
	if config.RedisAddress == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Errorf("Error connecting to redis at %s, continuing without cache, err: %v", config.RedisAddress, err)
		_ = rdb.Close()
		return nil
	}
	l.Info("Connected to redis at", config.RedisAddress)
	return rdb
}

func newServer(config *configuration.Config, dbConn *mongo.Client, rdb *redis.Client, l *logger.Logger) server.Server {
	return server.Server{
		DB: database.Database{Database: dbConn.Database(config.DatabaseName)},
		Client: client.New(&http.Client{Timeout: config.HTTPClientTimeout}, rdb, l, client.Config{
			EbayClientID:      config.EbayClientID,
			EbayClientSecret:  config.EbayClientSecret,
			EbayMarketplaceID: config.EbayMarketplaceID,
			SerpAPIKey:        config.SerpAPIKey,
			UseSerpAPI:        config.UseSerpAPI,
			CacheTTL:          config.CacheTTL,
			WebhookURL:        config.AlertWebhookURL,
		}),
		Logger:            l,
		AuthSecretKey:     config.AuthSecretKey,
		AdminPasswordHash: config.AdminPasswordHash,
		TokenTTL:          config.TokenTTL,
		CORSOrigins:       config.CORSOrigins,
		SearchLimit:       config.SearchLimit,
		Workers:           config.AlertCheckWorkers,
	}
}
