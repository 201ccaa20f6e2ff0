package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN,required"`
	BotUsername   string `env:"BOT_USERNAME,required"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	TwitterClientID     string `env:"TWITTER_CLIENT_ID,required"`
	TwitterClientSecret string `env:"TWITTER_CLIENT_SECRET,required"`
	TwitterCallbackURL  string `env:"TWITTER_CALLBACK_URL,required"`
	CallbackListenAddr  string `env:"CALLBACK_LISTEN_ADDR" envDefault:":3000"`

	// first_only keeps in-progress answers when a repeat verification
	// success arrives; always restarts the questionnaire on every success.
	VerificationResetPolicy string `env:"VERIFICATION_RESET_POLICY" envDefault:"first_only"`

	RedisAddr     string        `env:"REDIS_ADDR,required"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	VerifierTTL   time.Duration `env:"VERIFIER_TTL" envDefault:"15m"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,required"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"2m"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"project-images"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	OperatorChannelID  int64         `env:"OPERATOR_CHANNEL_ID"`
	AdminIDs           []int64       `env:"ADMIN_IDS" envSeparator:","`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.VerificationResetPolicy {
	case "first_only", "always":
	default:
		return nil, fmt.Errorf("invalid VERIFICATION_RESET_POLICY %q", cfg.VerificationResetPolicy)
	}

	return &cfg, nil
}
