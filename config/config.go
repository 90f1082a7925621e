package config

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogFile           string `mapstructure:"LOG_FILE"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payments.
	StripeKey             string  `mapstructure:"STRIPE_KEY"`
	Currency              string  `mapstructure:"CURRENCY"`
	CommissionRate        float64 `mapstructure:"COMMISSION_RATE"`
	GatewayTimeoutSeconds int     `mapstructure:"GATEWAY_TIMEOUT_SECONDS"`

	// Cancellation policy. Tiers are "hoursBefore:refundPercent" pairs,
	// e.g. "48:100,24:50,0:0". Kept as configuration so policy can vary
	// per deployment without touching the engine.
	RefundTiers     string `mapstructure:"REFUND_TIERS"`
	PendingSLAHours int    `mapstructure:"PENDING_SLA_HOURS"`

	// Firebase service account for push notifications. Optional; pushes
	// are disabled when empty.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

// RefundTier is one parsed tier of the cancellation policy.
type RefundTier struct {
	HoursBefore   int
	RefundPercent float64
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "tajriba")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("CURRENCY", "MAD")
	viper.SetDefault("COMMISSION_RATE", 0.20)
	viper.SetDefault("GATEWAY_TIMEOUT_SECONDS", 15)
	viper.SetDefault("REFUND_TIERS", "48:100,24:50,0:0")
	viper.SetDefault("PENDING_SLA_HOURS", 24)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := ParseRefundTiers(AppConfig.RefundTiers); err != nil {
		log.Fatalf("Invalid REFUND_TIERS: %v", err)
	}
	if AppConfig.CommissionRate < 0 || AppConfig.CommissionRate >= 1 {
		log.Fatalf("COMMISSION_RATE must be in [0,1), got %v", AppConfig.CommissionRate)
	}
}

// ParseRefundTiers parses a "hours:percent,hours:percent" spec into tiers
// sorted by hours descending. The last tier is the catch-all.
func ParseRefundTiers(spec string) ([]RefundTier, error) {
	parts := strings.Split(spec, ",")
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty tier spec")
	}
	tiers := make([]RefundTier, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed tier %q", part)
		}
		hours, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("malformed hours in tier %q: %w", part, err)
		}
		percent, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed percent in tier %q: %w", part, err)
		}
		if hours < 0 || percent < 0 || percent > 100 {
			return nil, fmt.Errorf("tier %q out of range", part)
		}
		tiers = append(tiers, RefundTier{HoursBefore: hours, RefundPercent: percent})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].HoursBefore > tiers[j].HoursBefore })
	return tiers, nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
