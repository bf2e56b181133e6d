package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       string
	CartTTL       string
	CatalogTTL    string

	KafkaBrokers           string
	KafkaClientID          string
	KafkaGroupID           string
	KafkaTopicPartitions   string
	KafkaReplicationFactor string
	KafkaMinISR            string
	EventDrivenEnabled     string

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
	ImageMaxWidth     string

	UPIPayeeVPA  string
	UPIPayeeName string
	UPICurrency  string
	QRBaseURL    string

	AdminEmail        string
	AdminPasswordHash string
	JWTSecret         string
	JWTTTL            string

	CountdownSeconds string
	SessionIdleTTL   string
	SessionSweep     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "storefront"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		CartTTL:       getEnv("CART_TTL", "720h"),
		CatalogTTL:    getEnv("CATALOG_CACHE_TTL", "5m"),

		KafkaBrokers:           getEnv("KAFKA_BROKERS", "kafka:9092"),
		KafkaClientID:          getEnv("KAFKA_CLIENT_ID", "storefront"),
		KafkaGroupID:           getEnv("KAFKA_GROUP_ID", "storefront-consumers"),
		KafkaTopicPartitions:   getEnv("KAFKA_TOPIC_PARTITIONS", "3"),
		KafkaReplicationFactor: getEnv("KAFKA_REPLICATION_FACTOR", "1"),
		KafkaMinISR:            getEnv("KAFKA_MIN_ISR", "1"),
		EventDrivenEnabled:     getEnv("EVENT_DRIVEN_ENABLED", "false"),

		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Bucket:          getEnv("S3_BUCKET", "products"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		ImageMaxWidth:     getEnv("IMAGE_MAX_WIDTH", "1200"),

		UPIPayeeVPA:  getEnv("UPI_PAYEE_VPA", "9946668104@upi"),
		UPIPayeeName: getEnv("UPI_PAYEE_NAME", "YEOUBI"),
		UPICurrency:  getEnv("UPI_CURRENCY", "INR"),
		QRBaseURL:    getEnv("QR_BASE_URL", "https://api.qrserver.com/v1/create-qr-code/"),

		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@yeoubi.in"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		JWTTTL:            getEnv("JWT_TTL", "12h"),

		CountdownSeconds: getEnv("CHECKOUT_COUNTDOWN_SECONDS", "60"),
		SessionIdleTTL:   getEnv("SESSION_IDLE_TTL", "30m"),
		SessionSweep:     getEnv("SESSION_SWEEP_INTERVAL", "1m"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) DatabaseURL() string {
	return "postgresql://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func (c *Config) TopicPartitions() int {
	return parseInt(c.KafkaTopicPartitions, 3)
}

func (c *Config) ReplicationFactor() int16 {
	value := parseInt(c.KafkaReplicationFactor, 1)
	return int16(value)
}

func (c *Config) RedisDatabase() int {
	db, err := strconv.Atoi(c.RedisDB)
	if err != nil || db < 0 {
		return 0
	}
	return db
}

func (c *Config) CartTTLDuration() time.Duration {
	return parseDuration(c.CartTTL, 30*24*time.Hour)
}

func (c *Config) CatalogTTLDuration() time.Duration {
	return parseDuration(c.CatalogTTL, 5*time.Minute)
}

func (c *Config) JWTTTLDuration() time.Duration {
	return parseDuration(c.JWTTTL, 12*time.Hour)
}

func (c *Config) Countdown() int {
	return parseInt(c.CountdownSeconds, 60)
}

// SessionIdleDuration is how long an unused cart session stays in memory.
// Evicted carts are restored from Redis on the next request.
func (c *Config) SessionIdleDuration() time.Duration {
	return parseDuration(c.SessionIdleTTL, 30*time.Minute)
}

func (c *Config) SessionSweepInterval() time.Duration {
	return parseDuration(c.SessionSweep, time.Minute)
}

func (c *Config) MaxImageWidth() int {
	return parseInt(c.ImageMaxWidth, 1200)
}

func (c *Config) EventDriven() bool {
	enabled, err := strconv.ParseBool(c.EventDrivenEnabled)
	return err == nil && enabled
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
