package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authclient "github.com/vibast-solutions/lib-go-auth/client"
	authmiddleware "github.com/vibast-solutions/lib-go-auth/middleware"
	authlibservice "github.com/vibast-solutions/lib-go-auth/service"
	"github.com/vibast-solutions/ms-go-receipts/app/access"
	"github.com/vibast-solutions/ms-go-receipts/app/controller"
	receiptsgrpc "github.com/vibast-solutions/ms-go-receipts/app/grpc"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
	"github.com/vibast-solutions/ms-go-receipts/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the receipts service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type controllers struct {
	payments  *controller.PaymentController
	receipts  *controller.ReceiptController
	customers *controller.CustomerController
	admin     *controller.AdminController
	limiter   *controller.LoginRateLimiter
	links     *access.Signer
}

func runServe(_ *cobra.Command, _ []string) {
	a := mustCreateApp()
	defer a.cleanup()

	ctrls := &controllers{
		payments:  controller.NewPaymentController(a.paymentService, a.links),
		receipts:  controller.NewReceiptController(a.receiptService, a.links),
		customers: controller.NewCustomerController(a.userService, a.paymentService, a.links),
		admin: controller.NewAdminController(
			a.adminService,
			a.paymentService,
			a.receiptService,
			a.userService,
			a.reminderService,
			a.cfg.Admin,
		),
		limiter: controller.NewLoginRateLimiter(a.cfg.Admin.LoginRatePerMinute, a.cfg.Admin.LoginBurst),
		links:   a.links,
	}
	grpcReceiptsServer := receiptsgrpc.NewServer(a.paymentService, a.receiptService)

	authGRPCClient, err := authclient.NewGRPCClientFromAddr(context.Background(), a.cfg.InternalEndpoints.AuthGRPCAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize auth gRPC client")
	}
	defer authGRPCClient.Close()

	internalAuthService := authlibservice.NewInternalAuthService(authGRPCClient)
	echoInternalAuthMiddleware := authmiddleware.NewEchoInternalAuthMiddleware(internalAuthService)
	grpcInternalAuthMiddleware := authmiddleware.NewGRPCInternalAuthMiddleware(internalAuthService)

	e := setupHTTPServer(ctrls, echoInternalAuthMiddleware, a.cfg.App.ServiceName)
	grpcSrv, lis := setupGRPCServer(a.cfg, grpcReceiptsServer, grpcInternalAuthMiddleware, a.cfg.App.ServiceName)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go runDispatchLoop(workerCtx, a)

	go func() {
		httpAddr := net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	go func() {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting gRPC server")
		if err := grpcSrv.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	grpcSrv.GracefulStop()

	logrus.Info("Server stopped")
}

// runDispatchLoop sweeps the receipt outbox in-process so deliveries that
// failed on the callback path are retried without a separate worker.
func runDispatchLoop(ctx context.Context, a *app) {
	interval := a.cfg.Jobs.ReceiptDispatchInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runJob("receipts_dispatch", func() error { return a.receiptService.RunReceiptDispatchBatch(ctx) })
		}
	}
}

func setupHTTPServer(
	ctrls *controllers,
	internalAuthMiddleware *authmiddleware.EchoInternalAuthMiddleware,
	appServiceName string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(controller.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", ctrls.payments.Health)

	paymentLink := controller.RequireLinkToken(ctrls.links, access.ScopePayment)
	receiptLink := controller.RequireLinkToken(ctrls.links, access.ScopeReceipt)
	customerLink := controller.RequireLinkToken(ctrls.links, access.ScopeCustomer)

	payments := e.Group("/payments")
	payments.POST("", ctrls.payments.CreatePayment)
	payments.POST("/qr", ctrls.payments.CreateQRPayment)
	payments.POST("/verify", ctrls.payments.VerifyRazorpayPayment)
	payments.GET("/details", ctrls.payments.PaymentDetails)
	payments.GET("/:id", ctrls.payments.GetPayment, paymentLink)
	payments.GET("/:id/status", ctrls.payments.RefreshPaymentStatus, paymentLink)
	payments.POST("/:id/utr", ctrls.payments.SubmitUTR, paymentLink)
	payments.GET("/:id/receipt", ctrls.receipts.EnsurePaymentReceipt, paymentLink)
	payments.GET("/:id/receipt/pdf", ctrls.receipts.DownloadPaymentReceiptPDF, paymentLink)

	e.POST("/webhooks/:gateway", ctrls.payments.HandleCallback)

	receipts := e.Group("/receipts")
	receipts.GET("/:id", ctrls.receipts.GetReceipt, receiptLink)
	receipts.GET("/:id/pdf", ctrls.receipts.DownloadReceiptPDF, receiptLink)
	receipts.POST("/:id/email", ctrls.receipts.EmailReceipt, receiptLink)

	customers := e.Group("/customers")
	customers.POST("/login", ctrls.customers.Login)
	customers.GET("/:id/payments", ctrls.customers.ListPayments, customerLink)

	admin := e.Group("/admin")
	admin.POST("/login", ctrls.admin.Login, ctrls.limiter.Middleware())
	admin.POST("/logout", ctrls.admin.Logout)

	secured := admin.Group("", ctrls.admin.RequireAdmin())
	secured.GET("/stats", ctrls.admin.Stats)
	secured.GET("/payments", ctrls.admin.ListPayments)
	secured.PATCH("/payments/:id/status", ctrls.admin.OverrideStatus)
	secured.POST("/payments/:id/approve", ctrls.admin.ApprovePayment)
	secured.POST("/payments/:id/resend-receipt", ctrls.admin.ResendReceipt)
	secured.GET("/receipts", ctrls.admin.ListReceipts)
	secured.GET("/users", ctrls.admin.ListUsers)
	secured.POST("/users", ctrls.admin.CreateUser)
	secured.POST("/reminders", ctrls.admin.SendReminder)
	secured.GET("/reminders", ctrls.admin.ListReminders)
	secured.POST("/direct-receipt", ctrls.admin.DirectReceipt)

	internal := e.Group("/internal", internalAuthMiddleware.RequireInternalAccess(appServiceName))
	internal.GET("/payments/:id", ctrls.payments.GetPayment)
	internal.GET("/payments/:id/receipt", ctrls.receipts.EnsurePaymentReceipt)
	internal.GET("/receipts/:id", ctrls.receipts.GetReceipt)

	return e
}

func setupGRPCServer(
	cfg *config.Config,
	receiptsServer *receiptsgrpc.Server,
	internalAuthMiddleware *authmiddleware.GRPCInternalAuthMiddleware,
	appServiceName string,
) (*grpc.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			receiptsgrpc.RecoveryInterceptor(),
			receiptsgrpc.RequestIDInterceptor(),
			receiptsgrpc.LoggingInterceptor(),
			internalAuthMiddleware.UnaryRequireInternalAccess(appServiceName),
		),
	)
	types.RegisterReceiptsServiceServer(grpcSrv, receiptsServer)

	return grpcSrv, lis
}
