package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/schoolbridge/schoolbridge-backend/api/routes"
	"github.com/schoolbridge/schoolbridge-backend/internal/auth"
	"github.com/schoolbridge/schoolbridge-backend/internal/complaints"
	"github.com/schoolbridge/schoolbridge-backend/internal/dashboard"
	"github.com/schoolbridge/schoolbridge-backend/internal/feedback"
	"github.com/schoolbridge/schoolbridge-backend/internal/messaging"
	"github.com/schoolbridge/schoolbridge-backend/internal/notifications"
	"github.com/schoolbridge/schoolbridge-backend/internal/pricing"
	"github.com/schoolbridge/schoolbridge-backend/internal/ratings"
	"github.com/schoolbridge/schoolbridge-backend/internal/suppliers"
	"github.com/schoolbridge/schoolbridge-backend/internal/users"
	"github.com/schoolbridge/schoolbridge-backend/pkg/auth/session"
	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db"
	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
	"github.com/schoolbridge/schoolbridge-backend/pkg/migrate"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/redis"
	"github.com/schoolbridge/schoolbridge-backend/pkg/storage/gcs"
)

// ratingReaderAdapter narrows the ratings service to the overview shape the
// supplier list renders.
type ratingReaderAdapter struct {
	svc ratings.Service
}

func (a ratingReaderAdapter) OverviewForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]suppliers.RatingOverview, error) {
	overviews, err := a.svc.OverviewForSuppliers(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]suppliers.RatingOverview, len(overviews))
	for id, o := range overviews {
		out[id] = suppliers.RatingOverview{Overall: o.Overall, Count: o.Count}
	}
	return out, nil
}

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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	supplierRepo := suppliers.NewRepository(gdb)
	outboxService := outbox.NewService(outbox.NewRepository(gdb), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gdb),
		SupplierRepo:   supplierRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterServiceForDB(dbClient, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	adminRegisterService, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin register service", err)
		os.Exit(1)
	}

	ratingsService, err := ratings.NewService(ratings.NewRepository(gdb), supplierRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create ratings service", err)
		os.Exit(1)
	}

	suppliersService, err := suppliers.NewService(suppliers.ServiceParams{
		Repo:    supplierRepo,
		Tx:      dbClient,
		Outbox:  outboxService,
		Ratings: ratingReaderAdapter{svc: ratingsService},
		Signer:  gcsClient,
		GCSCfg:  cfg.GCS,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create suppliers service", err)
		os.Exit(1)
	}

	feedbackService, err := feedback.NewService(feedback.NewRepository(gdb), supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create feedback service", err)
		os.Exit(1)
	}

	messagingService, err := messaging.NewService(messaging.NewRepository(gdb), supplierRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create messaging service", err)
		os.Exit(1)
	}

	complaintsService, err := complaints.NewService(complaints.NewRepository(gdb), supplierRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create complaints service", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricing.NewRepository(gdb), supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Applications: supplierRepo,
		Ratings:      ratingsService,
		Messaging:    messagingService,
		Complaints:   complaintsService,
		Pricing:      pricingService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsClient, sessionManager, routes.Services{
			Auth:          authService,
			Register:      registerService,
			AdminRegister: adminRegisterService,
			Suppliers:     suppliersService,
			Ratings:       ratingsService,
			Feedback:      feedbackService,
			Messaging:     messagingService,
			Complaints:    complaintsService,
			Pricing:       pricingService,
			Dashboard:     dashboardService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
