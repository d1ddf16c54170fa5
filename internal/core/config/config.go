package config

import (
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

// App 四个服务各占一个监听端口
type App struct {
	Name    string
	Env     string
	Auth    HTTP
	Book    HTTP
	Borrow  HTTP
	Gateway HTTP
}

type Log struct {
	Level string
	JSON  bool
}

type JWT struct {
	Secret       string
	Issuer       string
	AccessTTLHrs int // 线上契约：24 小时
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string // mysql / postgres
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Services 网关出站地址与单次调用超时
type Services struct {
	AuthURL        string
	BookURL        string
	BorrowURL      string
	CallTimeoutSec int
}

type Bootstrap struct {
	AdminUsername string
	AdminPassword string
	MaxRetries    int
	BaseDelaySec  int
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Services  Services
	Bootstrap Bootstrap
	Session   Session
}

type Session struct {
	CookieName string
	TTLHrs     int
}

func Load(path string) *Config {
	v := viper.New()
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
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.JWT.AccessTTLHrs <= 0 {
		c.JWT.AccessTTLHrs = 24
	}
	if c.Services.CallTimeoutSec <= 0 {
		c.Services.CallTimeoutSec = 10
	}
	if c.Bootstrap.AdminUsername == "" {
		c.Bootstrap.AdminUsername = "admin"
	}
	if c.Bootstrap.AdminPassword == "" {
		c.Bootstrap.AdminPassword = "adminpass"
	}
	if c.Bootstrap.MaxRetries <= 0 {
		c.Bootstrap.MaxRetries = 10
	}
	if c.Bootstrap.BaseDelaySec <= 0 {
		c.Bootstrap.BaseDelaySec = 2
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "library_session"
	}
	if c.Session.TTLHrs <= 0 {
		c.Session.TTLHrs = 24
	}
}
