package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	GRPC              ServerConfig
	MySQL             MySQLConfig
	Redis             RedisConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Razorpay          RazorpayConfig
	Cashfree          CashfreeConfig
	PhonePe           PhonePeConfig
	SMTP              SMTPConfig
	Twilio            TwilioConfig
	S3                S3Config
	Kafka             KafkaConfig
	Payments          PaymentsConfig
	Admin             AdminConfig
	Links             LinksConfig
	Jobs              JobsConfig
}

type AppConfig struct {
	ServiceName string
	PublicURL   string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type CashfreeConfig struct {
	ClientID     string
	ClientSecret string
	Environment  string
	BaseURL      string
	APIVersion   string
}

type PhonePeConfig struct {
	MerchantID string
	SaltKey    string
	SaltIndex  string
	BaseURL    string
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	OperatorEmail string
}

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type PaymentsConfig struct {
	GatewayHTTPTimeout           time.Duration
	GatewayMaxAttempts           int
	GatewayRetryDelay            time.Duration
	ReceiptDeliveryMaxAttempts   int32
	ReceiptDeliveryRetryInterval time.Duration
	ReceiptDeliveryTimeout       time.Duration
	PendingTimeout               time.Duration
	ReconcileStaleAfter          time.Duration
	JobBatchSize                 int32
}

type AdminConfig struct {
	SessionTTL         time.Duration
	LoginRatePerMinute int
	LoginBurst         int
}

// LinksConfig signs the access tokens carried by customer-facing payment,
// receipt and customer links.
type LinksConfig struct {
	Secret string
	TTL    time.Duration
}

type JobsConfig struct {
	ReceiptDispatchInterval time.Duration
	ReconcileInterval       time.Duration
	ExpirePendingInterval   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}
	linkSecret := os.Getenv("ACCESS_LINK_SECRET")
	if linkSecret == "" {
		return nil, errors.New("ACCESS_LINK_SECRET environment variable is required")
	}

	cashfreeEnv := strings.ToLower(getEnv("CASHFREE_ENVIRONMENT", "sandbox"))
	cashfreeBaseURL := "https://sandbox.cashfree.com/pg"
	if cashfreeEnv == "production" {
		cashfreeBaseURL = "https://api.cashfree.com/pg"
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "receipts-service"),
			PublicURL:   strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:8080"), "/"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Cashfree: CashfreeConfig{
			ClientID:     getEnv("CASHFREE_CLIENT_ID", ""),
			ClientSecret: getEnv("CASHFREE_CLIENT_SECRET", ""),
			Environment:  cashfreeEnv,
			BaseURL:      strings.TrimRight(getEnv("CASHFREE_BASE_URL", cashfreeBaseURL), "/"),
			APIVersion:   getEnv("CASHFREE_API_VERSION", "2022-09-01"),
		},
		PhonePe: PhonePeConfig{
			MerchantID: getEnv("PHONEPE_MERCHANT_ID", ""),
			SaltKey:    getEnv("PHONEPE_SALT_KEY", ""),
			SaltIndex:  getEnv("PHONEPE_SALT_INDEX", "1"),
			BaseURL:    strings.TrimRight(getEnv("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox"), "/"),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:          getIntEnv("SMTP_PORT", 587),
			Username:      getEnv("SMTP_USER", ""),
			Password:      getEnv("SMTP_PASS", ""),
			From:          getEnv("SMTP_FROM", getEnv("SMTP_USER", "")),
			OperatorEmail: getEnv("OPERATOR_EMAIL", "akrix.ai@gmail.com"),
		},
		Twilio: TwilioConfig{
			AccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
			WhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		},
		S3: S3Config{
			Bucket:          getEnv("RECEIPTS_S3_BUCKET", ""),
			Region:          getEnv("AWS_REGION", "ap-south-1"),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_PAYMENT_EVENTS_TOPIC", "receipts.payment-events"),
		},
		Payments: PaymentsConfig{
			GatewayHTTPTimeout:           getSecondsEnv("GATEWAY_HTTP_TIMEOUT_SECONDS", 10*time.Second),
			GatewayMaxAttempts:           getIntEnv("GATEWAY_MAX_ATTEMPTS", 3),
			GatewayRetryDelay:            getMillisecondsEnv("GATEWAY_RETRY_DELAY_MS", time.Second),
			ReceiptDeliveryMaxAttempts:   int32(getIntEnv("RECEIPTS_DELIVERY_MAX_ATTEMPTS", 5)),
			ReceiptDeliveryRetryInterval: getMinutesEnv("RECEIPTS_DELIVERY_RETRY_INTERVAL_MINUTES", 5*time.Minute),
			ReceiptDeliveryTimeout:       getSecondsEnv("RECEIPTS_DELIVERY_TIMEOUT_SECONDS", 60*time.Second),
			PendingTimeout:               getMinutesEnv("PAYMENTS_PENDING_TIMEOUT_MINUTES", 24*60*time.Minute),
			ReconcileStaleAfter:          getMinutesEnv("PAYMENTS_RECONCILE_STALE_AFTER_MINUTES", 15*time.Minute),
			JobBatchSize:                 int32(getIntEnv("PAYMENTS_JOB_BATCH_SIZE", 100)),
		},
		Admin: AdminConfig{
			SessionTTL:         getMinutesEnv("ADMIN_SESSION_TTL_MINUTES", 12*60*time.Minute),
			LoginRatePerMinute: getIntEnv("ADMIN_LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:         getIntEnv("ADMIN_LOGIN_BURST", 5),
		},
		Links: LinksConfig{
			Secret: linkSecret,
			TTL:    getMinutesEnv("ACCESS_LINK_TTL_MINUTES", 7*24*60*time.Minute),
		},
		Jobs: JobsConfig{
			ReceiptDispatchInterval: getMinutesEnv("RECEIPTS_DISPATCH_INTERVAL_MINUTES", time.Minute),
			ReconcileInterval:       getMinutesEnv("PAYMENTS_RECONCILE_INTERVAL_MINUTES", 5*time.Minute),
			ExpirePendingInterval:   getMinutesEnv("PAYMENTS_EXPIRE_PENDING_INTERVAL_MINUTES", 30*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getMillisecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
