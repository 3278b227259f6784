package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 厨房伝票の送り先
const (
	DispatchLog      = "log"
	DispatchAMQP     = "amqp"
	DispatchTelegram = "telegram"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret    string // JWT署名シークレット
	CookieSecure bool

	GoEnv    string // dev/prod
	LogLevel string

	KitchenDispatch       string // log/amqp/telegram
	AMQPURL               string
	TelegramToken         string
	TelegramKitchenChatID int64

	Timezone string
	Location *time.Location // 「今日」の区切り

	// 初回起動時に作るオーナー（任意）
	OwnerUsername string
	OwnerPassword string
}

// Loadは.envと環境変数から読む
func Load(envFiles ...string) (Config, error) {
	//.envは無くてもよい
	_ = godotenv.Load(envFiles...)

	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	chatID, err := int64Default("TELEGRAM_KITCHEN_CHAT_ID", 0)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieSecure: envBool("COOKIE_SECURE", true),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		KitchenDispatch:       strings.ToLower(getenv("KITCHEN_DISPATCH", DispatchLog)),
		AMQPURL:               os.Getenv("AMQP_URL"),
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		TelegramKitchenChatID: chatID,

		Timezone: getenv("TIMEZONE", "UTC"),

		OwnerUsername: os.Getenv("OWNER_USERNAME"),
		OwnerPassword: os.Getenv("OWNER_PASSWORD"),
	}

	//必須チェック
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.KitchenDispatch {
	case DispatchLog:
	case DispatchAMQP:
		if cfg.AMQPURL == "" {
			return Config{}, fmt.Errorf("AMQP_URL is required")
		}
	case DispatchTelegram:
		if cfg.TelegramToken == "" {
			return Config{}, fmt.Errorf("TELEGRAM_TOKEN is required")
		}
		if cfg.TelegramKitchenChatID == 0 {
			return Config{}, fmt.Errorf("TELEGRAM_KITCHEN_CHAT_ID is required")
		}
	default:
		return Config{}, fmt.Errorf("KITCHEN_DISPATCH must be one of log, amqp, telegram")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// DSN はgorm用の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode, c.Timezone,
	)
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func int64Default(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
