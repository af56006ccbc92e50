// Package cleanup は放置された匿名カートの自動削除ジョブを提供する。
// 保持期間（デフォルト30日）を超えて更新されていない匿名カート項目を
// 日次バッチで削除する。ログインユーザーのカートは対象外。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/shopfront/internal/metrics"
)

// DefaultRetentionDays は匿名カートの保持日数のデフォルト値。
const DefaultRetentionDays = 30

// DefaultInterval はジョブの実行間隔。
const DefaultInterval = 24 * time.Hour

// CartCleaner は匿名カート項目の一括削除を抽象化するインターフェース。
// repository.CartRepositoryが満たす。
type CartCleaner interface {
	DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CartCleanupJob は保持期間を超過した匿名カート項目の自動削除ジョブ。
// 削除は冪等で、対象がなくてもエラーにならない。
type CartCleanupJob struct {
	carts         CartCleaner
	logger        *slog.Logger
	metrics       metrics.MetricsCollector
	nowFunc       func() time.Time
	RetentionDays int // 匿名カートの保持日数（デフォルト: 30）
}

// NewCartCleanupJob は新しいCartCleanupJobを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewCartCleanupJob(carts CartCleaner, logger *slog.Logger, collector metrics.MetricsCollector) *CartCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &CartCleanupJob{
		carts:         carts,
		logger:        logger,
		metrics:       collector,
		nowFunc:       time.Now,
		RetentionDays: DefaultRetentionDays,
	}
}

// Run はupdated_atがRetentionDays日前より古い匿名カート項目を削除する。
func (j *CartCleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := j.nowFunc().AddDate(0, 0, -j.RetentionDays)

	deletedCount, err := j.carts.DeleteAnonymousOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("匿名カートのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("匿名カートのクリーンアップに失敗: %w", err)
	}

	j.metrics.RecordCartItemsCleaned(deletedCount)

	j.logger.Info("匿名カートのクリーンアップが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Time("cutoff", cutoff),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// Start は起動直後に1回Runを実行し、以降intervalごとに繰り返す。
// ctxがキャンセルされるまでブロックする。個々の実行エラーはログに記録して継続する。
func (j *CartCleanupJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	_ = j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
