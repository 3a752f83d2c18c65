package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LogLevel  string
	LogFormat string

	MatchFanOut   int
	OfferTTLHours int
	SweepBatch    int
	ReviewURLBase string

	NotifyEnabled     bool
	NotifyConcurrency int
	AWSRegion         string
	SESFromEmail      string
	SNSTopicARN       string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// loadEnvFile reads the first .env found; variables already set in the
// process environment win.
func loadEnvFile() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func Load() *Config {
	loadEnvFile()
	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lendmatch"),
		MySQLUser: getenv("MYSQL_USER", "lendmatch"),
		MySQLPass: getenv("MYSQL_PASS", "lendmatch"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		MatchFanOut:   getint("MATCH_FANOUT", 5),
		OfferTTLHours: getint("OFFER_TTL_HOURS", 24),
		SweepBatch:    getint("SWEEP_BATCH", 100),
		ReviewURLBase: getenv("REVIEW_URL_BASE", ""),

		NotifyEnabled:     getbool("NOTIFY_ENABLED", false),
		NotifyConcurrency: getint("NOTIFY_CONCURRENCY", 4),
		AWSRegion:         getenv("AWS_REGION", "us-east-1"),
		SESFromEmail:      getenv("SES_FROM_EMAIL", ""),
		SNSTopicARN:       getenv("SNS_TOPIC_ARN", ""),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.MatchFanOut <= 0 {
		return fmt.Errorf("MATCH_FANOUT must be positive, got %d", c.MatchFanOut)
	}
	if c.OfferTTLHours <= 0 {
		return fmt.Errorf("OFFER_TTL_HOURS must be positive, got %d", c.OfferTTLHours)
	}
	if c.NotifyEnabled {
		if c.SESFromEmail == "" || c.SNSTopicARN == "" {
			return errors.New("NOTIFY_ENABLED needs SES_FROM_EMAIL and SNS_TOPIC_ARN")
		}
		if !strings.HasPrefix(c.SNSTopicARN, "arn:") {
			return fmt.Errorf("invalid SNS_TOPIC_ARN %q", c.SNSTopicARN)
		}
	}
	return nil
}

func (c *Config) OfferTTL() time.Duration { return time.Duration(c.OfferTTLHours) * time.Hour }
func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
