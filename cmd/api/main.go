package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/procureflow-backend/api/routes"
	"github.com/angelmondragon/procureflow-backend/internal/auth"
	"github.com/angelmondragon/procureflow-backend/internal/goodsreceipts"
	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
	"github.com/angelmondragon/procureflow-backend/internal/notifications"
	"github.com/angelmondragon/procureflow-backend/internal/procurement"
	"github.com/angelmondragon/procureflow-backend/internal/purchaseorders"
	"github.com/angelmondragon/procureflow-backend/internal/users"
	"github.com/angelmondragon/procureflow-backend/pkg/config"
	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/angelmondragon/procureflow-backend/pkg/metrics"
	"github.com/angelmondragon/procureflow-backend/pkg/migrate"
	"github.com/angelmondragon/procureflow-backend/pkg/redis"
	"github.com/angelmondragon/procureflow-backend/pkg/sequence"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	references, err := sequence.NewAllocator(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create reference allocator", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	requestRepo := materialrequests.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	staffService, err := auth.NewStaffService(auth.StaffServiceParams{
		Directory:      userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create staff service", err)
		os.Exit(1)
	}

	requestService, err := materialrequests.NewService(materialrequests.ServiceParams{
		Repo:       requestRepo,
		References: references,
		Threshold:  cfg.Workflow.HighValueThreshold,
		Metrics:    workflowMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create material request service", err)
		os.Exit(1)
	}
	orderService, err := purchaseorders.NewService(purchaseorders.ServiceParams{
		Repo:       purchaseorders.NewRepository(dbClient.DB()),
		Requests:   requestRepo,
		Tx:         dbClient,
		References: references,
		Metrics:    workflowMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase order service", err)
		os.Exit(1)
	}
	receiptService, err := goodsreceipts.NewService(goodsreceipts.ServiceParams{
		Repo:        goodsreceipts.NewRepository(dbClient.DB()),
		References:  references,
		AutoForward: cfg.Workflow.GRNAutoForward,
		Metrics:     workflowMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create goods received note service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	preferences, err := notifications.NewPreferenceStore(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create preference store", err)
		os.Exit(1)
	}
	notifier, err := procurement.NewNotifier(procurement.NotifierParams{
		DB:             dbClient.DB(),
		Store:          redisClient,
		IdempotencyTTL: cfg.Notifications.IdempotencyTTL,
		Metrics:        workflowMetrics,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:               dbClient,
			Redis:            redisClient,
			Idempotency:      redisClient,
			Gatherer:         registry,
			HTTPMetrics:      metrics.NewHTTPMetrics(registry),
			Auth:             authService,
			Staff:            staffService,
			MaterialRequests: requestService,
			PurchaseOrders:   orderService,
			GoodsReceipts:    receiptService,
			Notifications:    notificationService,
			Preferences:      preferences,
			Forwarder:        notifier,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
