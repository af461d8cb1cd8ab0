package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpadp "library-backend/internal/adapter/http"
	mw "library-backend/internal/adapter/middleware"
	"library-backend/internal/adapter/repository/gormrepo"
	"library-backend/internal/config"
	domainborrowing "library-backend/internal/domain/borrowing"
	"library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/db"
	"library-backend/internal/telemetry"
	"library-backend/internal/usecase/borrowing"
	"library-backend/internal/usecase/catalog"
	"library-backend/internal/usecase/fines"
	"library-backend/internal/usecase/reservation"
	"library-backend/internal/usecase/returns"
	"library-backend/internal/usecase/settings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "library-backend"

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint, cfg.OTLPInsecure)

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		slog.Error("db connect", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		slog.Error("db migrate", "err", err)
		os.Exit(1)
	}
	sqlDB, _ := gdb.DB()
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		slog.Error("redis connect", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	loc := cfg.Location()
	tx := gormrepo.NewGormUoW(gdb)

	settingsUC := settings.NewUsecase(gormrepo.NewSettingsRepository(gdb), cache.NewSettingsCache(rdb, cfg.SettingsCacheTTL()), loc)
	if err := settingsUC.Seed(ctx); err != nil {
		slog.Error("seed settings", "err", err)
		os.Exit(1)
	}

	policy := domainborrowing.Policy{
		LoanPeriodDays:      cfg.LoanPeriodDays,
		MaxRenewals:         cfg.MaxRenewals,
		MaxActiveBorrowings: cfg.MaxActiveBorrowings,
	}
	queue := reservation.NewUsecase(gormrepo.NewReservationRepository(gdb), tx, settingsUC,
		reservation.Policy{PickupWindow: cfg.PickupWindow(), Borrowing: policy})
	borrowUC := borrowing.NewUsecase(gormrepo.NewBorrowingRepository(gdb), tx, settingsUC, queue, policy)
	returnUC := returns.NewUsecase(gormrepo.NewReturnRepository(gdb), tx, settingsUC, queue)

	limiter := mw.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(mw.Slog())
	e.Use(limiter.Middleware())

	health := httpadp.NewHandler().
		WithCheck("db", sqlDB.PingContext).
		WithCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })

	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health:       health,
		Borrowings:   httpadp.NewBorrowingHandler(borrowUC),
		Returns:      httpadp.NewReturnHandler(returnUC),
		Reservations: httpadp.NewReservationHandler(queue),
		Settings:     httpadp.NewSettingsHandler(settingsUC),
		Catalog: httpadp.NewCatalogHandler(
			catalog.NewUsecase(gormrepo.NewCatalogRepository(gdb), tx, queue),
			fines.NewUsecase(gormrepo.NewFineTypeRepository(gdb)),
		),
	}, mw.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL()))

	go runSweeps(ctx, cfg.SweepInterval(),
		sweepJob{name: "overdue", run: func(ctx context.Context) error {
			_, err := borrowUC.SweepOverdue(ctx)
			return err
		}},
		sweepJob{name: "reservation-expiry", run: func(ctx context.Context) error {
			_, err := queue.ExpireReady(ctx)
			return err
		}},
		sweepJob{name: "rate-limit-evict", run: func(context.Context) error {
			limiter.Evict()
			return nil
		}},
	)

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      otelhttp.NewHandler(e, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		slog.Info("listening", "addr", server.Addr, "driver", cfg.DBDriver, "tz", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown", "err", err)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
