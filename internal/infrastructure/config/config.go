package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	defaultAccessSecret  = "dev-access-secret-change-me"
	defaultRefreshSecret = "dev-refresh-secret-change-me"
)

// Config 儲存 HTTP API 及外部相依的執行設定。
type Config struct {
	HTTP  HTTPConfig  `yaml:"http"`
	DB    DBConfig    `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`
	Store StoreConfig `yaml:"store"`
	Auth  AuthConfig  `yaml:"auth"`
	Log   LogConfig   `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DBConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// StoreConfig 決定 refresh token 的儲存位置；Driver 為空時依 Redis/DB 設定推斷。
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=memory postgres redis"`
}

type AuthConfig struct {
	AccessSecret  string        `yaml:"access_secret" validate:"required"`
	RefreshSecret string        `yaml:"refresh_secret" validate:"required,nefield=AccessSecret"`
	AccessTTL     time.Duration `yaml:"access_ttl" validate:"gt=0"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" validate:"gtfield=AccessTTL"`
	Issuer        string        `yaml:"issuer"`
	// RotateRefresh 為 true 時 /api/auth/refresh 也會換發新的 refresh token。
	RotateRefresh bool          `yaml:"rotate_refresh"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// LoadFromFile 從 YAML 組態檔載入設定，檔案不存在時只使用預設值與環境變數。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyEnv(cfg)
	cfg = applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查必要欄位與彼此的關係。
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.StoreDriver() == StorePostgres && c.DB.DSN == "" {
		return errors.New("invalid config: store.driver=postgres requires db.dsn")
	}
	if c.StoreDriver() == StoreRedis && c.Redis.Addr == "" {
		return errors.New("invalid config: store.driver=redis requires redis.addr")
	}
	return nil
}

// StoreDriver 回傳實際使用的 refresh store。
func (c Config) StoreDriver() string {
	if c.Store.Driver != "" {
		return c.Store.Driver
	}
	if c.Redis.Addr != "" {
		return StoreRedis
	}
	if c.DB.DSN != "" {
		return StorePostgres
	}
	return StoreMemory
}

// UsesDefaultSecrets 表示仍在使用開發用 secret。
func (c Config) UsesDefaultSecrets() bool {
	return c.Auth.AccessSecret == defaultAccessSecret || c.Auth.RefreshSecret == defaultRefreshSecret
}

// WithDefaults 補上未設定欄位的預設值。
func WithDefaults(cfg Config) Config {
	return applyDefaults(cfg)
}

func applyDefaults(cfg Config) Config {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":5000"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 10 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 10 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "tokenauth"
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 15 * time.Minute
	}
	if cfg.Auth.RefreshTTL == 0 {
		cfg.Auth.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Auth.AccessSecret == "" {
		cfg.Auth.AccessSecret = defaultAccessSecret
	}
	if cfg.Auth.RefreshSecret == "" {
		cfg.Auth.RefreshSecret = defaultRefreshSecret
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "token-auth"
	}
	if cfg.Auth.PurgeInterval == 0 {
		cfg.Auth.PurgeInterval = 10 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("HTTP_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("CORS_ORIGINS"); val != "" {
		cfg.HTTP.CORSOrigins = splitList(val)
	}
	if val := os.Getenv("DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = n
		}
	}
	if val := os.Getenv("STORE_DRIVER"); val != "" {
		cfg.Store.Driver = strings.ToLower(val)
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		cfg.Auth.AccessSecret = val
	}
	if val := os.Getenv("REFRESH_SECRET"); val != "" {
		cfg.Auth.RefreshSecret = val
	}
	if val := os.Getenv("ACCESS_TOKEN_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Auth.AccessTTL = d
		}
	}
	if val := os.Getenv("REFRESH_TOKEN_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Auth.RefreshTTL = d
		}
	}
	if val := os.Getenv("ROTATE_REFRESH"); val != "" {
		cfg.Auth.RotateRefresh = (val == "true")
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Log.Format = strings.ToLower(val)
	}
	return cfg
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
