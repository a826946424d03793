package auth

import (
	"context"
	"time"

	"token-auth/internal/domain/auth"

	"github.com/sirupsen/logrus"
)

// Janitor 定期清除過期的 refresh token。
type Janitor struct {
	store  auth.RefreshStore
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewJanitor(store auth.RefreshStore, logger logrus.FieldLogger) *Janitor {
	return &Janitor{
		store:  store,
		logger: logger.WithField("component", "refresh-janitor"),
		now:    time.Now,
	}
}

// RunOnce 執行一次清理並回傳刪除筆數。
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	n, err := j.store.PurgeExpired(ctx, j.now())
	if err != nil {
		j.logger.WithError(err).Warn("purge expired refresh tokens failed")
		return 0, err
	}
	if n > 0 {
		j.logger.WithField("purged", n).Info("expired refresh tokens purged")
	}
	return n, nil
}

// Run 依 interval 週期清理，直到 ctx 結束。interval <= 0 時直接返回。
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = j.RunOnce(ctx)
		}
	}
}
