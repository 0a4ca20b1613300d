package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	// AppBaseURL is the public web frontend base; conversation deep links in
	// push notifications are built against it.
	AppBaseURL string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	// PushProvider selects the outbound push channel: "line", "sns", or
	// empty to disable push notifications entirely.
	PushProvider     string
	LineChannelToken string
	LineAPIEndpoint  string // override for tests; empty means the real API
	SNSRegion        string

	// RedisAddr switches the pending-notification store from the in-process
	// map to Redis when set (multi-instance deployments).
	RedisAddr     string
	RedisPassword string

	MergeWindow               time.Duration
	EnableNotificationMerging bool

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Sessions      string
	Listings      string
	Conversations string
	Messages      string
	Reviews       string
	Categories    string
	Images        string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:    getEnv("APP_PORT", "3000"),
		AppEnv:     getEnv("APP_ENV", "development"),
		AppBaseURL: getEnv("APP_BASE_URL", "https://market.example.com"),

		AWSRegion:      getEnv("AWS_REGION", "ap-northeast-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Listings:      getEnv("DYNAMO_TABLE_LISTINGS", "listings"),
			Conversations: getEnv("DYNAMO_TABLE_CONVERSATIONS", "conversations"),
			Messages:      getEnv("DYNAMO_TABLE_MESSAGES", "messages"),
			Reviews:       getEnv("DYNAMO_TABLE_REVIEWS", "reviews"),
			Categories:    getEnv("DYNAMO_TABLE_CATEGORIES", "categories"),
			Images:        getEnv("DYNAMO_TABLE_IMAGES", "images"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "market-listing-images"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		PushProvider:     getEnv("PUSH_PROVIDER", ""),
		LineChannelToken: getEnv("LINE_CHANNEL_TOKEN", ""),
		LineAPIEndpoint:  getEnv("LINE_API_ENDPOINT", ""),
		SNSRegion:        getEnv("SNS_REGION", "ap-northeast-1"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		MergeWindow:               time.Duration(getEnvInt("MERGE_WINDOW_MINUTES", 30)) * time.Minute,
		EnableNotificationMerging: getEnvBool("ENABLE_NOTIFICATION_MERGING", true),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
