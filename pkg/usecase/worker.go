package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain"
	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/usecase/sync"
)

// SyncWorker 金融機関1件の定期同期
type SyncWorker struct {
	logger      domain.Logger
	syncer      *sync.Syncer
	institution *model.Institution

	Config *SyncWorkerConfig
}

// SyncWorkerConfig 定期同期の設定
type SyncWorkerConfig struct {
	IntervalSeconds int
}

// NewSyncWorker 生成
func NewSyncWorker(l domain.Logger, s *sync.Syncer, institution *model.Institution, config *SyncWorkerConfig) *SyncWorker {
	return &SyncWorker{
		logger:      l,
		syncer:      s,
		institution: institution,
		Config:      config,
	}
}

// Run 同期ループを開始
// 失敗したセッションは次の周期で作り直す
// 認証情報が不正になった場合は再連携が必要なためループを抜ける
func (w *SyncWorker) Run(ctx context.Context) error {
	var sess *sync.Session

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var err error
		if sess == nil {
			sess, err = w.syncer.Run(ctx, w.institution)
		} else {
			err = sess.Refresh(ctx)
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, model.ErrInvalidCredentials) {
				w.logger.Error("[worker] => stop sync (reauthentication required, institution: %d)", w.institution.ID)
				return nil
			}
			w.logger.Error("[worker] => sync failed (institution: %d); error: %v", w.institution.ID, err)
			sess = nil
		}

		if err := w.Wait(ctx); err != nil {
			return err
		}
	}
}

// Wait 待機
func (w *SyncWorker) Wait(ctx context.Context) error {
	interval := time.Duration(w.Config.IntervalSeconds) * time.Second

	w.logger.Debug("waiting ... (%v)\n", interval)
	ctx, cancel := context.WithTimeout(ctx, interval)
	defer cancel()

	<-ctx.Done()

	if ctx.Err() != context.Canceled && ctx.Err() != context.DeadlineExceeded {
		return ctx.Err()
	}
	return nil
}
