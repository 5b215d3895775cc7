// Package config loads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type ServerConfig struct {
	Host         string
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	DSN             string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	File       string // empty = stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// WalletConfig points at the seamless wallet service holding player funds.
type WalletConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// MasterConfig authenticates branch management calls.
type MasterConfig struct {
	Code   string
	Secret string
}

type LedgerConfig struct {
	// Location every stored bet time is expressed in.
	Location *time.Location
	// Fanout bounds concurrent provider calls in the running report.
	Fanout int
}

type SboConfig struct {
	ResendSpec  string
	ResendAfter time.Duration
	ResendBatch int
}

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Wallet WalletConfig
	Master MasterConfig
	Ledger LedgerConfig
	Saba   ProviderConfig
	Sbo    ProviderConfig
	SboJob SboConfig
}

func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN or DB_HOST must be set"))
	}
	if c.Wallet.BaseURL == "" {
		errs = append(errs, errors.New("WALLET_API_URL must be set"))
	}
	if c.Master.Code == "" || c.Master.Secret == "" {
		errs = append(errs, errors.New("MASTER_AGENT_CODE and MASTER_AGENT_SECRET must be set"))
	}
	if c.Ledger.Fanout < 1 {
		errs = append(errs, fmt.Errorf("PROVIDER_FANOUT must be positive, got %d", c.Ledger.Fanout))
	}
	if err := c.Saba.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Sbo.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Load reads .env when present, then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}
	return FromEnv()
}

// MustLoad loads and validates configuration, panicking on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.Server = ServerConfig{
		Host:         getEnv("HOST", "127.0.0.1"),
		Port:         getEnv("PORT", "3000"),
		Env:          getEnv("ENVIRONMENT", "development"),
		ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" && os.Getenv("DB_HOST") != "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			os.Getenv("DB_HOST"),
			getEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_NAME", "sportsledger"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}
	cfg.DB = DBConfig{
		DSN:             dsn,
		AutoMigrate:     getBool("DB_AUTO_MIGRATE", false),
		MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Format:     getEnv("LOG_FORMAT", "json"),
		File:       os.Getenv("LOG_FILE"),
		MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: getInt("LOG_MAX_BACKUPS", 7),
		MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 30),
	}

	cfg.Wallet = WalletConfig{
		BaseURL: strings.TrimRight(os.Getenv("WALLET_API_URL"), "/"),
		APIKey:  os.Getenv("WALLET_API_KEY"),
		Timeout: getDuration("WALLET_TIMEOUT", 10*time.Second),
	}

	cfg.Master = MasterConfig{
		Code:   os.Getenv("MASTER_AGENT_CODE"),
		Secret: os.Getenv("MASTER_AGENT_SECRET"),
	}

	loc, err := ParseOffset(getEnv("LEDGER_TIME_OFFSET", "-04:00"))
	if err != nil {
		return nil, fmt.Errorf("LEDGER_TIME_OFFSET: %w", err)
	}
	cfg.Ledger = LedgerConfig{
		Location: loc,
		Fanout:   getInt("PROVIDER_FANOUT", 8),
	}

	if cfg.Saba, err = loadSaba(); err != nil {
		return nil, err
	}
	if cfg.Sbo, err = loadSbo(); err != nil {
		return nil, err
	}

	cfg.SboJob = SboConfig{
		ResendSpec:  getEnv("SBO_RESEND_CRON", "@every 2m"),
		ResendAfter: getDuration("SBO_RESEND_AFTER", 10*time.Minute),
		ResendBatch: getInt("SBO_RESEND_BATCH", 50),
	}

	return cfg, nil
}

// ParseOffset turns "+07:00" or "-04:00" into a fixed zone.
func ParseOffset(s string) (*time.Location, error) {
	t, err := time.Parse("-07:00", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q", s)
	}
	_, offset := t.Zone()
	return time.FixedZone("GMT"+strings.TrimSpace(s), offset), nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getList(key, fallback string) []string {
	var out []string
	for _, p := range strings.Split(getEnv(key, fallback), ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
