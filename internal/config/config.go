package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DataSource     string
	DBMaxOpenConns int
	DBMaxIdleConns int
	StoreTimeout   time.Duration

	SecretKey     []byte
	Algorithm     string
	TokenLifetime time.Duration

	KafkaBrokers []string

	AuthRateLimit float64
	AuthRateBurst int

	AllowAdminSignup     bool
	ProfileGuestFallback bool
}

// Load reads an optional .env file and then the process environment.
// The returned Config is not validated; call Validate before using it.
func Load(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: could not load .env: %v", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "shop-api"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DataSource:     os.Getenv("DATA_SOURCE"),
		DBMaxOpenConns: EnvIntDefault("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: EnvIntDefault("DB_MAX_IDLE_CONNS", 10),
		StoreTimeout:   EnvDurationDefault("STORE_TIMEOUT", 5*time.Second),

		SecretKey:     []byte(os.Getenv("SECRET_KEY")),
		Algorithm:     strings.ToUpper(strings.TrimSpace(os.Getenv("ALGORITHM"))),
		TokenLifetime: EnvDurationDefault("TOKEN_LIFETIME", 24*time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		AuthRateLimit: EnvFloatDefault("AUTH_RATE_LIMIT", 5),
		AuthRateBurst: EnvIntDefault("AUTH_RATE_BURST", 10),

		AllowAdminSignup:     EnvBoolDefault("ALLOW_ADMIN_SIGNUP", true),
		ProfileGuestFallback: EnvBoolDefault("PROFILE_GUEST_FALLBACK", false),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.DataSource == "" {
		errs = append(errs, errMissing("DATA_SOURCE"))
	}
	if len(c.SecretKey) == 0 {
		errs = append(errs, errMissing("SECRET_KEY"))
	}
	switch {
	case c.Algorithm == "":
		errs = append(errs, errMissing("ALGORITHM"))
	default:
		if _, ok := jwt.GetSigningMethod(c.Algorithm).(*jwt.SigningMethodHMAC); !ok {
			errs = append(errs, fmt.Errorf("ALGORITHM %q is not a supported HMAC algorithm", c.Algorithm))
		}
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.ServerPort))
	}
	if c.TokenLifetime <= 0 {
		errs = append(errs, errors.New("TOKEN_LIFETIME must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.AuthRateLimit < 0 || c.AuthRateBurst < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func errMissing(env string) error {
	return fmt.Errorf("missing required env %s", env)
}
