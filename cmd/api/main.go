package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "lendmatch/internal/adapter/http"
	idemp "lendmatch/internal/adapter/middleware"
	"lendmatch/internal/adapter/notify"
	"lendmatch/internal/adapter/repository/mysql"
	"lendmatch/internal/config"
	"lendmatch/internal/infrastructure/cache"
	"lendmatch/internal/infrastructure/db"
	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/usecase/ledger"
	loanuc "lendmatch/internal/usecase/loan"
	"lendmatch/internal/usecase/matching"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	lg := logger.NewZapAdapter(zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.WithLogLevel(cfg.LogLevel))
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	if err := db.AutoMigrate(gdb); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}
	rdb, err := cache.OpenRedis(ctx, cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		zl.Fatal("open redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	loans := mysql.NewLoanRepository(gdb)
	matches := mysql.NewMatchRepository(gdb)
	unit := mysql.NewGormUoW(gdb)

	var sender notify.Sender = notify.NewLogSender(lg)
	if cfg.NotifyEnabled {
		s, err := notify.NewAWSSender(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SNSTopicARN, mysql.NewContactRepository(gdb))
		if err != nil {
			zl.Fatal("notifier", zap.Error(err))
		}
		sender = s
	}
	dispatcher := notify.NewDispatcher(sender, lg, notify.Options{Concurrency: cfg.NotifyConcurrency})

	engine := matching.NewUsecase(matching.Deps{
		Loans:     loans,
		Lenders:   mysql.NewLenderRepository(gdb),
		Matches:   matches,
		Borrowers: mysql.NewBorrowerRepository(gdb),
		UoW:       unit,
		Ledger:    ledger.New(unit),
		Notifier:  dispatcher,
		Log:       lg,
	}, matching.Config{
		FanOut:        cfg.MatchFanOut,
		OfferTTL:      cfg.OfferTTL(),
		ReviewURLBase: cfg.ReviewURLBase,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Register(e,
		httpadp.NewHandler(db.NewProbe(gdb), cache.NewProbe(rdb)),
		httpadp.NewLoanHandler(loanuc.NewUsecase(loans, matches), lg),
		httpadp.NewMatchingHandler(engine, lg, cfg.SweepBatch),
		idemp.Idempotency(rdb, cfg.IdempTTL(), lg),
	)

	go func() {
		addr := ":" + cfg.AppPort
		lg.Info("listening", map[string]interface{}{"addr": addr})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.WithError(err).Error("http shutdown", nil)
	}
	// let in-flight notifications finish
	dispatcher.Wait()
	lg.Info("stopped", nil)
}
