package config

import (
	"time"

	"tenant_match/internal/domain"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env          string `env:"ENV" env-default:"local"`
	DatabaseURL  string `env:"DATABASE_URL" env-required:"true"`
	Database     DatabaseConfig
	HTTP         HTTPConfig
	GRPC         GRPCConfig
	Matching     MatchingConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	MaxConns        int32         `env:"DB_MAX_CONNS" env-default:"10"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" env-default:"1h"`
}

type HTTPConfig struct {
	Address     string        `env:"HTTP_ADDRESS" env-default:"0.0.0.0:8080"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	// AllowedOrigins — источники для CORS (через запятую).
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type GRPCConfig struct {
	Port    int           `env:"GRPC_PORT" env-default:"44044"`
	Timeout time.Duration `env:"GRPC_TIMEOUT" env-default:"10s"`
}

// MatchingConfig — веса измерений и параметры выдачи.
type MatchingConfig struct {
	BudgetWeight       float64 `env:"MATCH_WEIGHT_BUDGET" env-default:"0.40"`
	LocationWeight     float64 `env:"MATCH_WEIGHT_LOCATION" env-default:"0.25"`
	PreferencesWeight  float64 `env:"MATCH_WEIGHT_PREFERENCES" env-default:"0.20"`
	RequirementsWeight float64 `env:"MATCH_WEIGHT_REQUIREMENTS" env-default:"0.15"`
	// MinScore — результаты с score <= MinScore не попадают в выдачу.
	MinScore     float64 `env:"MATCH_MIN_SCORE" env-default:"0.3"`
	DefaultLimit int     `env:"MATCH_DEFAULT_LIMIT" env-default:"20"`
	MaxLimit     int     `env:"MATCH_MAX_LIMIT" env-default:"100"`
}

// NotificationConfig — уведомления о совпадениях.
type NotificationConfig struct {
	Enabled bool `env:"NOTIFY_ENABLE" env-default:"true"`
	// MinScore — минимальный score, при котором пользователь получает уведомление.
	MinScore float64 `env:"NOTIFY_MIN_SCORE" env-default:"0.7"`
	RabbitMQ RabbitMQConfig
}

type RabbitMQConfig struct {
	Enabled      bool   `env:"RABBITMQ_ENABLE" env-default:"false"`
	URL          string `env:"RABBITMQ_URL"`
	Exchange     string `env:"RABBITMQ_EXCHANGE" env-default:"matches"`
	ExchangeType string `env:"RABBITMQ_EXCHANGE_TYPE" env-default:"topic"`
	RoutingKey   string `env:"RABBITMQ_ROUTING_KEY" env-default:"match.created"`
}

// MatchConfig собирает конфигурацию скорера.
func (c MatchingConfig) MatchConfig() domain.MatchConfig {
	return domain.MatchConfig{
		Weights: domain.MatchWeights{
			Budget:       c.BudgetWeight,
			Location:     c.LocationWeight,
			Preferences:  c.PreferencesWeight,
			Requirements: c.RequirementsWeight,
		},
		MinScore: c.MinScore,
	}
}

// MatchConfig возвращает конфигурацию скорера из секции Matching.
func (c *Config) MatchConfig() domain.MatchConfig {
	return c.Matching.MatchConfig()
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from environment: " + err.Error())
	}
	return &cfg
}
