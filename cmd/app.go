package cmd

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/access"
	"github.com/vibast-solutions/ms-go-receipts/app/archive"
	"github.com/vibast-solutions/ms-go-receipts/app/document"
	"github.com/vibast-solutions/ms-go-receipts/app/events"
	"github.com/vibast-solutions/ms-go-receipts/app/notifier"
	"github.com/vibast-solutions/ms-go-receipts/app/provider"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/session"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

type app struct {
	cfg             *config.Config
	userService     *service.UserService
	paymentService  *service.PaymentService
	receiptService  *service.ReceiptService
	reminderService *service.ReminderService
	adminService    *service.AdminService
	links           *access.Signer
	cleanup         func()
}

func mustCreateApp() *app {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	paymentRepo := repository.NewPaymentRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)
	callbackRepo := repository.NewPaymentCallbackRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	retry := provider.RetryPolicy{
		MaxAttempts:  cfg.Payments.GatewayMaxAttempts,
		InitialDelay: cfg.Payments.GatewayRetryDelay,
		Multiplier:   1.5,
	}
	providerRegistry := provider.NewRegistry(
		provider.NewCashfreeProvider(provider.CashfreeConfig{
			ClientID:     cfg.Cashfree.ClientID,
			ClientSecret: cfg.Cashfree.ClientSecret,
			BaseURL:      cfg.Cashfree.BaseURL,
			APIVersion:   cfg.Cashfree.APIVersion,
			HTTPTimeout:  cfg.Payments.GatewayHTTPTimeout,
			Retry:        retry,
		}),
		provider.NewRazorpayProvider(provider.RazorpayConfig{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
			Retry:     retry,
		}),
		provider.NewPhonePeProvider(provider.PhonePeConfig{
			MerchantID:  cfg.PhonePe.MerchantID,
			SaltKey:     cfg.PhonePe.SaltKey,
			SaltIndex:   cfg.PhonePe.SaltIndex,
			BaseURL:     cfg.PhonePe.BaseURL,
			HTTPTimeout: cfg.Payments.GatewayHTTPTimeout,
			Retry:       retry,
		}),
		provider.NewManualProvider(),
	)

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelInit()
	receiptArchive, err := archive.NewS3Archive(initCtx, archive.Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize receipt archive")
	}

	mailer := notifier.NewSMTPMailer(notifier.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	whatsapp := notifier.NewTwilioWhatsApp(notifier.TwilioConfig{
		AccountSID:   cfg.Twilio.AccountSID,
		AuthToken:    cfg.Twilio.AuthToken,
		WhatsAppFrom: cfg.Twilio.WhatsAppFrom,
	})

	links := access.NewSigner(cfg.Links.Secret, cfg.Links.TTL)
	userService := service.NewUserService(userRepo)
	receiptService := service.NewReceiptService(
		receiptRepo,
		paymentRepo,
		userRepo,
		eventRepo,
		document.NewRenderer(),
		receiptArchive,
		mailer,
		publisher,
		cfg.SMTP.OperatorEmail,
		cfg.Payments,
	)
	paymentService := service.NewPaymentService(
		paymentRepo,
		receiptRepo,
		eventRepo,
		callbackRepo,
		userService,
		providerRegistry,
		publisher,
		receiptService,
		cfg.Payments,
		cfg.App.PublicURL,
		links,
	)
	reminderService := service.NewReminderService(paymentRepo, userRepo, reminderRepo, mailer, whatsapp)
	adminService := service.NewAdminService(
		adminRepo,
		session.NewRedisStore(redisClient, cfg.Admin.SessionTTL),
		paymentRepo,
		receiptRepo,
		userRepo,
	)

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close event publisher")
		}
		if err := redisClient.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis client")
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return &app{
		cfg:             cfg,
		userService:     userService,
		paymentService:  paymentService,
		receiptService:  receiptService,
		reminderService: reminderService,
		adminService:    adminService,
		links:           links,
		cleanup:         cleanup,
	}
}
