package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Store 选择账号存储后端：gorm | redis | memory
type Store struct {
	Backend string
}

// Cache 只对 gorm 后端生效，读穿透缓存账号记录
type Cache struct {
	Enable bool
	TTLSec int
}

// Password 哈希成本和可选的密码策略；min_length 为 0 时不限制
type Password struct {
	Cost          int
	MinLength     int
	MaxLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

type Config struct {
	App      App
	Log      Log
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Store    Store
	Cache    Cache
	Password Password
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "account-auth")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("store.backend", "gorm")
	v.SetDefault("cache.ttlsec", 60)
	v.SetDefault("password.cost", 12)
}

// Read 读取 YAML + APP_ 前缀环境变量（APP_DB_DSN 覆盖 db.dsn）
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "gorm", "redis", "memory":
	default:
		return fmt.Errorf("store.backend %q: want gorm, redis or memory", c.Store.Backend)
	}
	if c.Store.Backend == "redis" || c.Cache.Enable {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for store.backend=%s cache.enable=%t", c.Store.Backend, c.Cache.Enable)
		}
	}
	return nil
}
