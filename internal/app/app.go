package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"doorstep-clean/internal/config"
	"doorstep-clean/internal/database"
	"doorstep-clean/internal/jobs"
	"doorstep-clean/internal/middleware"
	"doorstep-clean/internal/modules/catalog"
	"doorstep-clean/internal/modules/intake"
	"doorstep-clean/internal/modules/invoices"
	"doorstep-clean/internal/modules/notifications"
	"doorstep-clean/internal/modules/orders"
	"doorstep-clean/internal/modules/tasks"
	"doorstep-clean/internal/modules/users"
	"doorstep-clean/internal/outbox"
	"doorstep-clean/internal/sequence"
	"doorstep-clean/pkg/email"
	"doorstep-clean/pkg/payment"
	"doorstep-clean/pkg/vision"
)

// App owns every long-lived component: the HTTP server, the outbox worker,
// the scheduled jobs, and the database pool.
type App struct {
	cfg    *config.Config
	echo   *echo.Echo
	db     *pgxpool.Pool
	worker *outbox.Worker
	jobs   *jobs.JobManager
}

// New constructs the application: connects the database, runs migrations,
// wires the modules, and registers routes and event handlers.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// Shared infrastructure.
	outboxRepo := outbox.NewRepository(db)
	worker := outbox.NewWorker(outboxRepo, 5*time.Second, 20)
	numbers := sequence.NewGenerator(sequence.NewPostgresStore(db))

	// External services. Email is best-effort everywhere it is used, so a
	// broken AWS credential chain must not take the server down with it.
	var emailSvc email.ServiceInterface
	emailSvc, err = email.NewSESService(ctx, cfg.AWSRegion, cfg.SenderEmail, cfg.BusinessEmail)
	if err != nil {
		slog.Warn("email service unavailable, continuing without outbound mail", "error", err)
		emailSvc = email.NewDisabledService(slog.Default())
	}
	paymentSvc := payment.NewStripeService(cfg.StripeAPIKey, "")
	visionClient := vision.NewClient(cfg.VisionAPIURL, cfg.VisionAPIKey)
	googleClient := users.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	// Modules.
	orderRepo := orders.NewRepository(db, outboxRepo)
	orderSvc := orders.NewService(orderRepo, numbers, paymentSvc)
	orderHandler := orders.NewHandler(orderSvc)

	invoiceRepo := invoices.NewRepository(db)
	invoiceSvc := invoices.NewService(invoiceRepo, orderRepo, numbers)
	invoiceHandler := invoices.NewHandler(invoiceSvc)

	taskRepo := tasks.NewRepository(db)
	taskSvc := tasks.NewService(taskRepo, orderRepo)
	taskHandler := tasks.NewHandler(taskSvc)

	userRepo := users.NewRepository(db)
	userSvc := users.NewService(userRepo, googleClient, cfg.JWTSecret)
	userHandler := users.NewHandler(userSvc)

	catalogRepo := catalog.NewRepository(db)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)

	notificationRepo := notifications.NewRepository(db)
	notificationSvc := notifications.NewService(notificationRepo)
	notificationHandler := notifications.NewHandler(notificationSvc)

	intakeHandler := intake.NewHandler(visionClient, emailSvc)

	registerEventHandlers(worker, orderRepo, invoiceSvc, notificationSvc, emailSvc)

	jobManager := jobs.NewJobManager(orderRepo, outboxRepo, slog.Default())

	// HTTP server.
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))

	api := e.Group("/api")

	// Public surface: booking, tracking, price list, auth, intake.
	api.POST("/bookings", orderHandler.CreateOrder)
	api.GET("/track/:orderNumber", orderHandler.TrackOrder)
	api.POST("/bookings/analyze", intakeHandler.Analyze)
	api.POST("/contact", intakeHandler.Contact)
	api.GET("/services", catalogHandler.ListServices)
	api.POST("/auth/register", userHandler.Register)
	api.POST("/auth/login", userHandler.Login)
	api.POST("/auth/google", userHandler.GoogleLogin)

	// Everything else requires a verified identity.
	auth := api.Group("", middleware.JWT(cfg.JWTSecret), middleware.ExtractIdentity)

	auth.GET("/orders", orderHandler.ListOrders)
	auth.GET("/orders/:orderId", orderHandler.GetOrder)
	auth.PATCH("/orders/:orderId", orderHandler.UpdateOrder)
	auth.GET("/orders/:orderId/payment-link", orderHandler.PaymentPrompt)

	auth.POST("/tasks", taskHandler.CreateTask)
	auth.GET("/tasks", taskHandler.ListTasks)
	auth.GET("/tasks/:taskId", taskHandler.GetTask)
	auth.PATCH("/tasks/:taskId", taskHandler.UpdateTask)

	auth.GET("/invoices", invoiceHandler.ListInvoices)
	auth.POST("/invoices", invoiceHandler.CreateInvoice)
	auth.POST("/invoices/:invoiceId/pay", invoiceHandler.MarkPaid)
	auth.GET("/reports/revenue", invoiceHandler.RevenueSummary)

	auth.GET("/notifications", notificationHandler.ListNotifications)
	auth.PATCH("/notifications/:notificationId/read", notificationHandler.MarkRead)

	auth.GET("/users", userHandler.ListUsers)
	auth.POST("/users", userHandler.CreateUser)

	auth.POST("/services", catalogHandler.CreateService)
	auth.PATCH("/services/:serviceId", catalogHandler.UpdateService)

	return &App{
		cfg:    cfg,
		echo:   e,
		db:     db,
		worker: worker,
		jobs:   jobManager,
	}, nil
}

// registerEventHandlers binds each outbox topic to its side effect. Handler
// errors trigger the worker's retry with backoff; nothing here can fail the
// order write that enqueued the event.
func registerEventHandlers(
	worker *outbox.Worker,
	orderRepo orders.RepositoryInterface,
	invoiceSvc invoices.ServiceInterface,
	notificationSvc notifications.ServiceInterface,
	emailSvc email.ServiceInterface,
) {
	worker.Register(outbox.TopicOrderCreated, func(ctx context.Context, e outbox.Event) error {
		var ev outbox.OrderEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return err
		}
		if err := notificationSvc.NotifyNewOrder(ctx, ev.OrderID, ev.OrderNumber); err != nil {
			return err
		}
		order, err := orderRepo.FindByID(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		if err := emailSvc.SendBookingConfirmation(ctx, order); err != nil {
			// The dashboard notification is written; a bounced email is not
			// worth replaying the whole event.
			slog.Error("booking confirmation email failed", "orderNumber", ev.OrderNumber, "error", err)
		}
		return nil
	})

	worker.Register(outbox.TopicStatusChanged, func(ctx context.Context, e outbox.Event) error {
		var ev outbox.OrderEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return err
		}
		return notificationSvc.NotifyStatusChange(ctx, ev.OrderID, ev.OrderNumber, ev.Status)
	})

	worker.Register(outbox.TopicInvoiceGenerate, func(ctx context.Context, e outbox.Event) error {
		var ev outbox.OrderEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return err
		}
		_, err := invoiceSvc.GenerateForOrder(ctx, ev.OrderID)
		return err
	})
}

// Run starts the HTTP server, the outbox worker, and the scheduled jobs,
// then blocks until an interrupt triggers a graceful shutdown.
func (a *App) Run() error {
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.worker.Start(workerCtx)

	if err := a.jobs.StartAll(); err != nil {
		cancelWorker()
		return fmt.Errorf("failed to start scheduled jobs: %w", err)
	}

	go func() {
		addr := ":" + a.cfg.ServerPort
		slog.Info("starting HTTP server", "addr", addr)
		if err := a.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.echo.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	a.jobs.StopAll()
	cancelWorker()
	a.worker.Stop()
	a.db.Close()

	slog.Info("application shutdown complete")
	return nil
}
