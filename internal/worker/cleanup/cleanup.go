// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 有効期限を過ぎたセッションの削除と、期限切れの
// パスワード再設定トークンのクリアを定期バッチで実行する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PurgeJob は期限切れセッションと期限切れ再設定トークンの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な処理を保証する。
type PurgeJob struct {
	db     Executor
	logger *slog.Logger
}

// NewPurgeJob は新しいPurgeJobを生成する。
func NewPurgeJob(db Executor, logger *slog.Logger) *PurgeJob {
	return &PurgeJob{
		db:     db,
		logger: logger,
	}
}

// Run は期限切れセッションの削除と期限切れ再設定トークンのクリアを実行する。
// トークンのクリアはreset_tokenとreset_token_expiryを同時にNULLにする
// （片方だけのクリアはCHECK制約違反になる）。
// 冪等: 対象がない場合でもエラーにならない。
func (j *PurgeJob) Run(ctx context.Context) error {
	start := time.Now()

	sessionResult, err := j.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	deletedSessions, err := sessionResult.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	tokenResult, err := j.db.ExecContext(ctx,
		`UPDATE users SET reset_token = NULL, reset_token_expiry = NULL, updated_at = now()
		 WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry <= now()`)
	if err != nil {
		j.logger.Error("期限切れ再設定トークンのクリアに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れ再設定トークンのクリアに失敗: %w", err)
	}

	clearedTokens, err := tokenResult.RowsAffected()
	if err != nil {
		return fmt.Errorf("クリア件数の取得に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("期限切れデータのクリーンアップジョブが完了しました",
		slog.Int64("deleted_sessions", deletedSessions),
		slog.Int64("cleared_reset_tokens", clearedTokens),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunPeriodic は指定間隔でRunを繰り返し実行する。
// ctxのキャンセルで停止する。起動直後に1回実行する。
func (j *PurgeJob) RunPeriodic(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("クリーンアップジョブの初回実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止します")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("クリーンアップジョブの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
