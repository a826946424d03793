package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type migration struct {
	version string
	path    string
}

// listMigrations 回傳目錄下依檔名排序的 .sql 檔。
func listMigrations(dir string) ([]migration, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("解析 migrations 路徑失敗: %w", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return nil, fmt.Errorf("migrations 目錄不存在: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(absDir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("讀取 migrations 失敗: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("找不到任何 .sql migration 檔案")
	}
	sort.Strings(files)

	out := make([]migration, 0, len(files))
	for _, f := range files {
		out = append(out, migration{version: filepath.Base(f), path: f})
	}
	return out, nil
}

// apply 逐一執行尚未套用的 migration，每個檔案在自己的 transaction 內完成。
func apply(ctx context.Context, db *sql.DB, files []migration, logger logrus.FieldLogger) (int, error) {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return 0, fmt.Errorf("建立 schema_migrations 失敗: %w", err)
	}

	applied := 0
	for _, m := range files {
		var exists bool
		err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("查詢 %s 狀態失敗: %w", m.version, err)
		}
		if exists {
			logger.WithField("version", m.version).Debug("migration already applied")
			continue
		}

		sqlBytes, err := os.ReadFile(m.path)
		if err != nil {
			return applied, fmt.Errorf("讀取檔案 %s 失敗: %w", m.path, err)
		}
		logger.WithField("version", m.version).Info("執行 migration")

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("執行 %s 失敗: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("記錄 %s 失敗: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
