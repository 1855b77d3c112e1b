package config

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"
)

const (
	DefaultMultiplier     = 1.65
	MinMultiplier         = 0.01
	MaxMultiplier         = 100.0
	DefaultStartBatchSize = 25
	DefaultStepBatchSize  = 50
	DefaultRecentLogs     = 50
	DefaultProgressTTL    = 3600
	DefaultSyncLogLimit   = 1000
	DefaultKeepDays       = 30
	DefaultRPS            = 5
	DefaultCacheTime      = 60
)

type (
	Config struct {
		SERVICE struct {
			PORT  int
			Token string
		}
		WOOCOMMERCE struct {
			URL    string
			Key    string
			Secret string
			RPS    int
		}
		COSTADJUSTER struct {
			Enabled        int
			Multiplier     string
			StartBatchSize int
			StepBatchSize  int
			RecentLogs     int
			ProgressTTL    int
		}
		DBSQLITE struct {
			DB string
		}
		LOG struct {
			Debug        int
			KeepDays     int
			SyncLogLimit int
		}
		CACHE struct {
			TimeUpdate int
		}
		TELEGRAM struct {
			BotToken string
			ChatID   int64
			Debug    int
		}
	}
)

var cfg *Config
var once sync.Once
var path = "./config/config.ini"
var envPath = ".env"

// SetPath must be called before the first GetConfig.
func SetPath(configPath, dotenvPath string) {
	if configPath != "" {
		path = configPath
	}
	if dotenvPath != "" {
		envPath = dotenvPath
	}
}

func GetConfig() *Config {
	once.Do(func() {
		err := os.MkdirAll("logs", 0770)
		if err != nil {
			fmt.Println(err)
		}

		var writers []io.Writer
		writers = append(writers, os.Stdout)
		file, err := os.OpenFile("logs/config.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Println(err)
		} else {
			writers = append(writers, file)
		}

		logger := log.New(io.MultiWriter(writers...), "MAIN ", log.Ldate|log.Ltime|log.Lshortfile)

		logger.Print("Config:>Read application configurations")

		cfg, err = ReadConfig(path, envPath)
		if err != nil {
			logger.Fatalf("Config:>Failed to parse gcfg data: %s", err)
		} else {
			logger.Print("Config:>Config is read")
		}
	})

	return cfg
}

// ReadConfig reads the INI file, overlays secrets from the optional dotenv file
// and fills defaults.
func ReadConfig(configPath, dotenvPath string) (*Config, error) {
	c := new(Config)
	err := gcfg.ReadFileInto(c, configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed gcfg.ReadFileInto(%s)", configPath)
	}

	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				return nil, errors.Wrapf(err, "failed godotenv.Load(%s)", dotenvPath)
			}
		}
	}
	c.applyEnv()
	c.applyDefaults()

	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("WOO_KEY"); v != "" {
		c.WOOCOMMERCE.Key = v
	}
	if v := os.Getenv("WOO_SECRET"); v != "" {
		c.WOOCOMMERCE.Secret = v
	}
	if v := os.Getenv("SERVICE_TOKEN"); v != "" {
		c.SERVICE.Token = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TELEGRAM.BotToken = v
	}
}

func (c *Config) applyDefaults() {
	if c.SERVICE.PORT == 0 {
		c.SERVICE.PORT = 8080
	}
	if c.WOOCOMMERCE.RPS <= 0 {
		c.WOOCOMMERCE.RPS = DefaultRPS
	}
	if c.COSTADJUSTER.StartBatchSize <= 0 {
		c.COSTADJUSTER.StartBatchSize = DefaultStartBatchSize
	}
	if c.COSTADJUSTER.StepBatchSize <= 0 {
		c.COSTADJUSTER.StepBatchSize = DefaultStepBatchSize
	}
	if c.COSTADJUSTER.RecentLogs <= 0 {
		c.COSTADJUSTER.RecentLogs = DefaultRecentLogs
	}
	if c.COSTADJUSTER.ProgressTTL <= 0 {
		c.COSTADJUSTER.ProgressTTL = DefaultProgressTTL
	}
	if c.DBSQLITE.DB == "" {
		c.DBSQLITE.DB = "db.db"
	}
	if c.LOG.KeepDays <= 0 {
		c.LOG.KeepDays = DefaultKeepDays
	}
	if c.LOG.SyncLogLimit <= 0 {
		c.LOG.SyncLogLimit = DefaultSyncLogLimit
	}
	if c.CACHE.TimeUpdate <= 0 {
		c.CACHE.TimeUpdate = DefaultCacheTime
	}
}

// Multiplier returns the sanitized multiplier from the COSTADJUSTER section.
func (c *Config) Multiplier() float64 {
	m, _ := SanitizeMultiplier(c.COSTADJUSTER.Multiplier)
	return m
}

// SanitizeMultiplier applies the configuration-time rules for the multiplier:
// non-numeric or <= 0.01 falls back to the default, > 100 is capped.
// The returned warning is empty when the value was accepted as is.
func SanitizeMultiplier(raw string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultMultiplier, ""
	}

	m, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return DefaultMultiplier, "Multiplier must be a valid number. Using default value instead."
	}
	if m <= MinMultiplier {
		return DefaultMultiplier, "Multiplier must be greater than 0.01. Using default value instead."
	}
	if m > MaxMultiplier {
		return MaxMultiplier, "Multiplier cannot exceed 100. Value has been capped."
	}

	m = math.Round(m*100) / 100
	if m <= MinMultiplier {
		return DefaultMultiplier, "Multiplier must be greater than 0.01. Using default value instead."
	}
	return m, ""
}
