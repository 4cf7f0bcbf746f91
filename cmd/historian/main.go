// cmd/historian is an asynchronous historian service that pops game actions from a Redis
// queue and persists them to PostgreSQL.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/chinchon/internal/cache"
	"github.com/jason-s-yu/chinchon/internal/config"
	"github.com/jason-s-yu/chinchon/internal/database"
	"github.com/jason-s-yu/chinchon/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
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

	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	if err := cache.ConnectRedis(ctx, redisAddr, cfg.RedisDB); err != nil {
		logger.Fatalf("%v", err)
	}
	defer cache.Rdb.Close()

	if cfg.DatabaseURL == "" {
		logger.Fatal("database_url is required")
	}
	if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatalf("%v", err)
	}
	defer database.DB.Close()
	if err := database.EnsureSchema(ctx, database.DB); err != nil {
		logger.Fatalf("%v", err)
	}

	hs := historian.NewService(cache.Rdb, database.ActionStore{Pool: database.DB}, historian.Options{
		QueueName:  cfg.HistorianQueueName,
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: time.Duration(cfg.HistorianFlushMs) * time.Millisecond,
		Inactivity: time.Duration(cfg.InactivityTimeout) * time.Second,
	}, logger)
	hs.Run(ctx)
	logger.Info("historian shutdown complete")
}
