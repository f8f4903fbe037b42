package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"powerbill/internal/config"
	apphttp "powerbill/internal/http"
	"powerbill/internal/repository/sqlite"
	"powerbill/internal/service"
	"powerbill/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		// an unreachable database at startup is fatal
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	billRepo := sqlite.NewBillRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := billRepo.Init(ctx); err != nil {
		logger.Fatalf("init bill repository: %v", err)
	}

	userService := service.NewUserService(userRepo)
	dashboardService := service.NewDashboardService(userRepo, billRepo)
	sessions := session.NewStore(time.Duration(cfg.Session.TTLMinutes) * time.Minute)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, dashboardService, sessions, logger, apphttp.Options{
		AllowedOrigin: cfg.Cors.Origin,
		CookieName:    cfg.Session.CookieName,
		SecureCookie:  cfg.Session.SecureCookie,
		WebDir:        cfg.Web.Dir,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
