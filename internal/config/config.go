// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/recyclehub/internal/cache"
	"github.com/erazemk/recyclehub/internal/upload"
)

// Config holds every setting read at startup.
type Config struct {
	Port string

	MongoURI      string
	MongoDatabase string
	DBPath        string

	UploadDir      string
	UploadMaxBytes int64
	S3             upload.S3Config

	RedisAddr string
	CacheTTL  time.Duration

	NATSURL string

	JWTSecret string

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies are reverse proxies whose X-Forwarded-For is believed
	// when keying the rate limiter.
	TrustedProxies []netip.Prefix

	LogFile string
}

// Load reads an optional env file and then the environment. A missing env
// file is not an error; a malformed value is.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
			slog.Info("no env file found, using environment", "path", envFile)
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "5000"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "recyclehub"),
		DBPath:        getEnv("DB_PATH", "recyclehub.sqlite3"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		S3: upload.S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    getEnv("S3_BUCKET", "recyclehub-uploads"),
		},
		RedisAddr: os.Getenv("REDIS_ADDR"),
		NATSURL:   os.Getenv("NATS_URL"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		LogFile:   os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.UploadMaxBytes, err = parseInt("UPLOAD_MAX_BYTES", upload.DefaultMaxBytes); err != nil {
		return nil, err
	}
	if cfg.S3.UseSSL, err = parseBool("S3_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", cache.DefaultTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = parseFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}
	burst, err := parseInt("RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitBurst = int(burst)
	if cfg.TrustedProxies, err = parsePrefixes("TRUSTED_PROXIES"); err != nil {
		return nil, err
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: must be a number", cfg.Port)
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES %d: must be positive", cfg.UploadMaxBytes)
	}
	return cfg, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// parsePrefixes reads a comma separated list of IPs and CIDRs. A bare IP is
// a single-address prefix.
func parsePrefixes(key string) ([]netip.Prefix, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	var prefixes []netip.Prefix
	for _, field := range strings.Split(v, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.Contains(field, "/") {
			p, err := netip.ParsePrefix(field)
			if err != nil {
				return nil, fmt.Errorf("invalid %s entry %q: %w", key, field, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(field)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, field, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
