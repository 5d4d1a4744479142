package utils

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"pocketbot/src-server/pocket"
)

type Config struct {
	port string

	discordAppToken string
	commandPrefix   string

	pocketConsumerKey string
	pocketBaseURL     string
	webappURL         string

	databasePath string

	metricCollectionInterval time.Duration
	webhookRateLimit         float64
	webhookRateBurst         int
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		discordAppToken: func() string {
			discordAppToken := os.Getenv("DISCORD_APP_TOKEN")
			if len(discordAppToken) < 3 {
				slog.Error("DISCORD_APP_TOKEN is not set")
				os.Exit(1)
			}
			slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:3]+"...")
			return discordAppToken
		}(),
		commandPrefix: func() string {
			commandPrefix := os.Getenv("COMMAND_PREFIX")
			if commandPrefix == "" {
				commandPrefix = "!"
			}
			slog.Debug("env", "COMMAND_PREFIX", commandPrefix)
			return commandPrefix
		}(),

		pocketConsumerKey: func() string {
			pocketConsumerKey := os.Getenv("POCKET_CONSUMER_KEY")
			if len(pocketConsumerKey) < 3 {
				slog.Error("POCKET_CONSUMER_KEY is not set")
				os.Exit(1)
			}
			slog.Debug("env", "POCKET_CONSUMER_KEY", pocketConsumerKey[0:3]+"...")
			return pocketConsumerKey
		}(),
		pocketBaseURL: func() string {
			pocketBaseURL := os.Getenv("POCKET_BASE_URL")
			if pocketBaseURL == "" {
				pocketBaseURL = pocket.DefaultBaseURL
			}
			slog.Debug("env", "POCKET_BASE_URL", pocketBaseURL)
			return strings.TrimSuffix(pocketBaseURL, "/")
		}(),
		webappURL: func() string {
			webappURL := os.Getenv("WEBAPP_URL")
			if webappURL == "" {
				slog.Error("WEBAPP_URL is not set")
				os.Exit(1)
			}
			slog.Debug("env", "WEBAPP_URL", webappURL)
			return strings.TrimSuffix(webappURL, "/")
		}(),

		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./pocket.db"
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),

		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if interval == "" {
				interval = "15s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "value", interval, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", duration)
			return duration
		}(),
		webhookRateLimit: func() float64 {
			rateLimit := os.Getenv("WEBHOOK_RATE_LIMIT")
			if rateLimit == "" {
				rateLimit = "1"
			}
			rps, err := strconv.ParseFloat(rateLimit, 64)
			if err != nil || rps <= 0 {
				slog.Error("invalid WEBHOOK_RATE_LIMIT", "value", rateLimit, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "WEBHOOK_RATE_LIMIT", rps)
			return rps
		}(),
		webhookRateBurst: func() int {
			rateBurst := os.Getenv("WEBHOOK_RATE_BURST")
			if rateBurst == "" {
				rateBurst = "5"
			}
			burst, err := strconv.Atoi(rateBurst)
			if err != nil || burst <= 0 {
				slog.Error("invalid WEBHOOK_RATE_BURST", "value", rateBurst, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "WEBHOOK_RATE_BURST", burst)
			return burst
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get COMMAND_PREFIX env, default to "!"
func (c *Config) GetCommandPrefix() string {
	return c.commandPrefix
}

// Get POCKET_CONSUMER_KEY env
func (c *Config) GetPocketConsumerKey() string {
	return c.pocketConsumerKey
}

// Get POCKET_BASE_URL env, default to https://getpocket.com
func (c *Config) GetPocketBaseURL() string {
	return c.pocketBaseURL
}

// Get WEBAPP_URL env, without trailing slash
func (c *Config) GetWebappURL() string {
	return c.webappURL
}

// Get DATABASE_PATH env, default to ./pocket.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get WEBHOOK_RATE_LIMIT env (requests per second per client), default to 1
func (c *Config) GetWebhookRateLimit() float64 {
	return c.webhookRateLimit
}

// Get WEBHOOK_RATE_BURST env, default to 5
func (c *Config) GetWebhookRateBurst() int {
	return c.webhookRateBurst
}
