package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	api "github.com/mind-engage/mindengage-grader/internal/api/http"
	"github.com/mind-engage/mindengage-grader/internal/assessment"
	auth "github.com/mind-engage/mindengage-grader/internal/auth/middleware"
	"github.com/mind-engage/mindengage-grader/internal/config"
	"github.com/mind-engage/mindengage-grader/internal/db"
	"github.com/mind-engage/mindengage-grader/internal/logging"
	"github.com/mind-engage/mindengage-grader/internal/metrics"
	syncx "github.com/mind-engage/mindengage-grader/internal/sync"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		// logger is not built yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logger.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer dbh.Close()

	store := assessment.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := assessment.NewService(store,
		assessment.WithEvents(events),
		assessment.WithMetrics(m),
		assessment.WithLogger(logger.Named("grading")),
		assessment.WithWorkers(cfg.GradingWorkers),
	)

	// --- Auth (local JWT for offline/dev) ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	r := api.NewRouter(api.Deps{
		Service:         svc,
		Events:          events,
		Auth:            authSvc,
		Metrics:         m,
		Log:             logger.Named("http"),
		EnableLocalAuth: cfg.EnableLocalAuth,
		Login: auth.LoginOptions{
			AdminUser:      cfg.AdminUser,
			AdminPassHash:  cfg.AdminPassHash,
			AllowDevLogins: cfg.Mode == config.ModeOffline,
		},
		CORSOrigins:    cfg.CORSOrigins(),
		RequestTimeout: cfg.RequestTimeout,
		Ready:          dbh.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, stopCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopCancel()

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("mode", string(cfg.Mode)),
			zap.String("db", cfg.DBDriver),
			zap.Int("workers", cfg.GradingWorkers))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-stop.Done()
	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
