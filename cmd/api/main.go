package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appauth "token-auth/internal/application/auth"
	"token-auth/internal/infrastructure/config"
	"token-auth/internal/infrastructure/logging"
	"token-auth/internal/infrastructure/metrics"
	httpapi "token-auth/internal/interface/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		logrus.Fatalf("CRITICAL: load config failed: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("CRITICAL: init logger failed: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"addr":   cfg.HTTP.Addr,
		"store":  cfg.StoreDriver(),
		"rotate": cfg.Auth.RotateRefresh,
	}).Info("configuration loaded")
	if cfg.UsesDefaultSecrets() {
		logger.Warn("JWT_SECRET/REFRESH_SECRET not set; using development secrets")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	st := openStores(connectCtx, cfg, logger)
	cancel()
	defer st.Close()

	gin.SetMode(gin.ReleaseMode)
	registry := metrics.NewRegistry()
	apiServer, err := httpapi.NewServer(cfg, httpapi.Deps{
		Users:    st.users,
		Refresh:  st.refresh,
		Store:    st.driver,
		DB:       st.db,
		Redis:    st.redis,
		Logger:   logger,
		Registry: registry,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	janitor := appauth.NewJanitor(st.refresh, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", srv.Addr).Info("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return janitor.Run(gctx, cfg.Auth.PurgeInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
