package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App is the process configuration, read from the environment with the
// COURTBOOK_ prefix. A .env file is honored when present.
type App struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"courtbook.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	AMQPURL      string `envconfig:"AMQP_URL" default:""`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"courtbook.events"`

	FCMCredentialsFile string `envconfig:"FCM_CREDENTIALS_FILE" default:""`

	SlotHorizonDays int    `envconfig:"SLOT_HORIZON_DAYS" default:"30"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env (if any) and then the environment.
func Load() (*App, error) {
	_ = godotenv.Load()

	var cfg App
	if err := envconfig.Process("COURTBOOK", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.SlotHorizonDays <= 0 {
		return nil, fmt.Errorf("slot horizon must be positive, got %d", cfg.SlotHorizonDays)
	}
	return &cfg, nil
}
