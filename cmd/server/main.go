// cmd/server/main.go
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

	"github.com/jason-s-yu/chinchon/internal/cache"
	"github.com/jason-s-yu/chinchon/internal/config"
	"github.com/jason-s-yu/chinchon/internal/database"
	"github.com/jason-s-yu/chinchon/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr != "" {
		cache.QueueName = cfg.HistorianQueueName
		if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
			logger.Warnf("redis unavailable, action log disabled: %v", err)
		} else {
			logger.Infof("publishing game actions to %s on %s", cache.QueueName, cfg.RedisAddr)
		}
	}
	if cfg.DatabaseURL != "" {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			logger.Warnf("database unavailable, results will not be stored: %v", err)
		} else if err := database.EnsureSchema(ctx, database.DB); err != nil {
			logger.Fatalf("%v", err)
		}
	}

	analysis, err := cache.NewAnalysisCache(cfg.CacheMaxCost)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer analysis.Close()

	srv := handlers.NewGameServer(ctx, cfg.GameSettings(), analysis, logger)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(logger, srv),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{"addr": httpSrv.Addr, "max_total_points": cfg.MaxTotalPoints}).Info("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
	if database.DB != nil {
		database.DB.Close()
	}
	logger.Info("server stopped")
}
