package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	App      AppConfig
	Bank     BankConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type AppConfig struct {
	// Origin is the public base URL embedded in QR verification links.
	Origin string
	// JWTSecret verifies the bearer tokens issued by the identity provider.
	JWTSecret string
	// VerifySecret, when set, switches verification codes to the HMAC scheme.
	VerifySecret string
	// MaxResalePrice caps listing prices in kobo.
	MaxResalePrice int64
	Currency       string
}

type BankConfig struct {
	CodesURL string
}

type PaymentConfig struct {
	BaseURL     string
	Secret      string
	CallbackURL string
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := getenvDefault("SERVER_HOST", "localhost")

	serverPort, err := strconv.Atoi(getenvDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	postgresHost := getenvDefault("POSTGRES_HOST", "localhost")

	postgresPort, err := strconv.Atoi(getenvDefault("POSTGRES_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("%s: missing JWT_SECRET", op)
	}

	paymentSecret := os.Getenv("PAYMENT_SECRET")
	if paymentSecret == "" {
		return nil, fmt.Errorf("%s: missing PAYMENT_SECRET", op)
	}

	maxResalePrice := int64(0)
	if s := os.Getenv("RESALE_MAX_PRICE"); s != "" {
		maxResalePrice, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid RESALE_MAX_PRICE: %w", op, err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Host: serverHost,
			Port: serverPort,
		},
		Postgres: PostgresConfig{
			User:     postgresUser,
			Password: postgresPassword,
			Name:     postgresDB,
			Host:     postgresHost,
			Port:     postgresPort,
			SSLMode:  getenvDefault("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getenvDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		App: AppConfig{
			Origin:         getenvDefault("APP_ORIGIN", "http://localhost:8080"),
			JWTSecret:      jwtSecret,
			VerifySecret:   os.Getenv("VERIFY_SECRET"),
			MaxResalePrice: maxResalePrice,
			Currency:       getenvDefault("CURRENCY", "NGN"),
		},
		Bank: BankConfig{
			CodesURL: getenvDefault("BANK_CODES_URL", "https://api.paystack.co/bank"),
		},
		Payment: PaymentConfig{
			BaseURL:     getenvDefault("PAYMENT_BASE_URL", "https://api.paystack.co"),
			Secret:      paymentSecret,
			CallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),
		},
	}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
