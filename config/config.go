// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"folio/media"
	"folio/store"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"
)

type Config struct {
	Env           string
	Addr          string
	JWTSecret     string
	DBDriver      string
	DBURL         string
	EnableSignup  bool
	WhitelistHost string
	CertCache     string

	UploadDir     string
	UploadBaseURL string
	S3            media.S3Options

	RedisAddr string
	CacheTTL  time.Duration
}

func (c Config) Dev() bool {
	return c.Env == DevEnv
}

// UseS3 reports whether uploads go to a bucket instead of the disk.
func (c Config) UseS3() bool {
	return c.S3.Bucket != ""
}

// CheckServe reports a setting the web server cannot start without.
func (c Config) CheckServe() error {
	if c.JWTSecret == "" {
		return errors.New("no secret defined")
	}
	return nil
}

// Load reads the environment. Missing values fall back to defaults that only
// make sense on a developer machine when ENV=dev.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	c := Config{
		Env:           getenv("ENV"),
		Addr:          getenv("ADDRESS_LISTEN"),
		JWTSecret:     getenv("JWT_SECRET"),
		DBDriver:      getenv("DB_DRIVER"),
		DBURL:         getenv("DB_URL"),
		EnableSignup:  getenv("ENABLE_SIGNUP") == "true",
		WhitelistHost: getenv("WHITELIST_HOST"),
		CertCache:     getenv("CERT_CACHE_DIR"),
		UploadDir:     getenv("UPLOAD_DIR"),
		UploadBaseURL: getenv("UPLOAD_BASE_URL"),
		S3: media.S3Options{
			Bucket:    getenv("S3_BUCKET"),
			Region:    getenv("S3_REGION"),
			Endpoint:  getenv("S3_ENDPOINT"),
			PublicURL: getenv("S3_PUBLIC_URL"),
			AccessKey: getenv("S3_ACCESS_KEY"),
			SecretKey: getenv("S3_SECRET_KEY"),
		},
		RedisAddr: getenv("REDIS_ADDR"),
		CacheTTL:  5 * time.Minute,
	}

	if c.Env == "" {
		c.Env = ProEnv
	}
	if c.Env != DevEnv && c.Env != ProEnv {
		return Config{}, fmt.Errorf("unknown ENV %q", c.Env)
	}
	if c.Dev() && c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.JWTSecret == "" && c.Dev() {
		c.JWTSecret = "unsecure"
	}

	if c.DBDriver == "" {
		c.DBDriver = store.DriverSQLite
	}
	switch c.DBDriver {
	case store.DriverSQLite:
		if c.DBURL == "" {
			c.DBURL = store.DefaultSQLiteDSN
		}
	case store.DriverPostgres:
		if c.DBURL == "" {
			return Config{}, errors.New("DB_URL is required for postgres")
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.CertCache == "" {
		c.CertCache = "/var/www/.cache"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.UploadBaseURL == "" {
		c.UploadBaseURL = "/uploads"
	}
	if c.UseS3() && c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}

	if ttl := getenv("CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			if secs, convErr := strconv.Atoi(ttl); convErr == nil {
				d = time.Duration(secs) * time.Second
			} else {
				return Config{}, fmt.Errorf("invalid CACHE_TTL: %w", err)
			}
		}
		c.CacheTTL = d
	}
	return c, nil
}
