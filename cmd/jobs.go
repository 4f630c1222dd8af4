package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

var (
	workerMode bool

	adminUsername string
	adminEmail    string
	adminPassword string
	adminRole     string
)

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Run receipt delivery commands",
}

var receiptsDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Deliver receipts of completed payments that are due in the outbox",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"receipts_dispatch",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ReceiptDispatchInterval },
			func(a *app, ctx context.Context) error {
				return a.receiptService.RunReceiptDispatchBatch(ctx)
			},
		)
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile stale gateway-backed payments",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"reconcile",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ReconcileInterval },
			func(a *app, ctx context.Context) error {
				return a.paymentService.RunReconcileBatch(ctx)
			},
		)
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Run expiration-related commands",
}

var expirePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Cancel gateway payments left pending past the timeout",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"expire_pending",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ExpirePendingInterval },
			func(a *app, ctx context.Context) error {
				return a.paymentService.RunExpirePendingBatch(ctx)
			},
		)
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin console accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin console account",
	Run: func(_ *cobra.Command, _ []string) {
		a := mustCreateApp()
		defer a.cleanup()

		admin, err := a.adminService.CreateAdmin(context.Background(), adminUsername, adminEmail, adminPassword, adminRole)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create admin")
		}
		logrus.WithFields(logrus.Fields{"admin_id": admin.ID, "username": admin.Username}).Info("admin_created")
	},
}

func init() {
	rootCmd.AddCommand(receiptsCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(expireCmd)
	rootCmd.AddCommand(adminCmd)
	receiptsCmd.AddCommand(receiptsDispatchCmd)
	expireCmd.AddCommand(expirePendingCmd)
	adminCmd.AddCommand(adminCreateCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")

	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password, at least 8 characters")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", "admin", "Admin role")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(a *app, ctx context.Context) error,
) {
	a := mustCreateApp()
	defer a.cleanup()

	if workerMode {
		runWorker(name, intervalResolver(a.cfg), a, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(a, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	a *app,
	fn func(a *app, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(a, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(a, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
