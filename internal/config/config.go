package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/NeelPanchal05/QuickChat/pkg/config"
	"github.com/NeelPanchal05/QuickChat/pkg/database"
	"github.com/NeelPanchal05/QuickChat/pkg/log"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Auth      AuthConfig
	Database  database.Config
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	SMTP      SMTPConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type RateLimitConfig struct {
	PerMinute     int           `mapstructure:"per_minute"`
	PerHour       int           `mapstructure:"per_hour"`
	BlockDuration time.Duration `mapstructure:"block_duration"`
}

type SMTPConfig struct {
	Host     string
	Port     int
	Email    string
	Password string
	Sender   string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("websocket.ping_interval", "25s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 65536)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("auth.secret", "your-secret-key-change-in-production")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "quickchat.db")
	v.SetDefault("rate_limit.per_minute", 10)
	v.SetDefault("rate_limit.per_hour", 100)
	v.SetDefault("rate_limit.block_duration", "1h")
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("log.level", "info")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("auth.secret", "SECRET_KEY")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("smtp.email", "GMAIL_EMAIL")
	v.BindEnv("smtp.password", "GMAIL_PASSWORD")
	v.BindEnv("smtp.sender", "SENDER_EMAIL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 25*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Auth.TokenTTL = parseDuration(v, "auth.token_ttl", 7*24*time.Hour)
	cfg.RateLimit.BlockDuration = parseDuration(v, "rate_limit.block_duration", time.Hour)

	if cfg.SMTP.Sender == "" {
		cfg.SMTP.Sender = cfg.SMTP.Email
	}

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
