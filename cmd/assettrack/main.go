package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assettrack/internal/config"
	"assettrack/internal/domain"
	"assettrack/internal/notify"
	"assettrack/internal/observability/logging"
	"assettrack/internal/observability/metrics"
	"assettrack/internal/observability/middleware"
	"assettrack/internal/service"
	impl "assettrack/internal/service/impl"
	"assettrack/internal/store"
	httpx "assettrack/internal/transport/http"
	"assettrack/pkg/db"
)

func main() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "assettrack",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load() // exits if SIGNING_KEY is absent

	metrics.MustRegister("assettrack")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: env == "dev"})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(&domain.User{}, &domain.Asset{}); err != nil {
		logger.Error("automigrate", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	pw := impl.NewPasswordServiceArgon2id()
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	if err != nil {
		logger.Error("token service", "error", err)
		os.Exit(1)
	}
	otp := impl.NewOtpService(st.Users(), cfg.OtpTTL)

	var sender service.Sender
	if cfg.SMTPHost != "" {
		sender = &notify.SMTP{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}
	} else {
		logger.Warn("SMTP_HOST unset, using dev log sender")
		sender = notify.Log{}
	}

	as := impl.NewAuthServiceImpl(st, pw, ts, otp, sender, cfg.LoginOtp)
	assets := impl.NewAssetServiceImpl(st)

	mux := httpx.NewRouter(as, assets, ts, httpx.RouterConfig{CORSOrigins: cfg.CORSOrigins})
	handler := middleware.WithRequestAndTrace(middleware.WithMetrics(mux))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := &store.Sweeper{Store: st, TTL: cfg.UnverifiedTTL, Interval: cfg.SweepInterval}
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("listening", "addr", srv.Addr, "issuer", cfg.Issuer, "login_otp", cfg.LoginOtp)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
