package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"token-auth/internal/infrastructure/config"
	"token-auth/internal/infrastructure/logging"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("dir", "db/migrations", "path to migrations directory")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		logrus.Fatalf("讀取組態失敗: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("初始化 logger 失敗: %v", err)
	}

	if cfg.DB.DSN == "" {
		logger.Fatal("config.db.dsn 未設定，無法執行 migration")
	}

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Fatalf("連線資料庫失敗: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	files, err := listMigrations(*migrationsPath)
	if err != nil {
		logger.Fatal(err)
	}
	applied, err := apply(ctx, db, files, logger.WithField("component", "migrate"))
	if err != nil {
		logger.Fatal(err)
	}
	logger.WithField("applied", applied).Info("Migration 完成")
}

