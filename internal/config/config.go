package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Enabled  bool   `yaml:"enabled"`
}

// NotifyConfig drives the reminder/deadline notification cycle.
type NotifyConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"` // cycle period, default 60
	LookaheadDays   int    `yaml:"lookahead_days"`   // deadline window, default 4
	DefaultDueTime  string `yaml:"default_due_time"` // "HH:MM" used when a task has no due time
	LedgerTTLDays   int    `yaml:"ledger_ttl_days"`  // per-day ledger key expiry
}

func (c NotifyConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Telegram TelegramConfig `yaml:"telegram"`
	Notify   NotifyConfig   `yaml:"notify"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Notify.IntervalSeconds <= 0 {
		cfg.Notify.IntervalSeconds = 60
	}
	if cfg.Notify.LookaheadDays <= 0 {
		cfg.Notify.LookaheadDays = 4
	}
	if cfg.Notify.DefaultDueTime == "" {
		cfg.Notify.DefaultDueTime = "09:00"
	}
	if cfg.Notify.LedgerTTLDays <= 0 {
		cfg.Notify.LedgerTTLDays = cfg.Notify.LookaheadDays + 1
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	return &cfg
}
