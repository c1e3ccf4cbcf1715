package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/einsteinx2/balance-open/pkg/domain"
	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/memory"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/poloniex"
)

// RateWatcher レート監視者
// プッシュ配信のティッカーを購読してレートキャッシュを更新する
type RateWatcher struct {
	logger domain.Logger
	client *poloniex.Client
	cache  *memory.RateCache

	RetryIntervalSeconds int
}

// NewRateWatcher 生成
func NewRateWatcher(l domain.Logger, client *poloniex.Client, cache *memory.RateCache) *RateWatcher {
	return &RateWatcher{
		logger:               l,
		client:               client,
		cache:                cache,
		RetryIntervalSeconds: 10,
	}
}

// Watch 監視
// 切断時は一定間隔を空けて再接続する
func (w *RateWatcher) Watch(ctx context.Context) error {
	for {
		err := w.client.SubscribeTicker(ctx, func(pair model.CurrencyPair, last decimal.Decimal) {
			w.cache.SetRate(pair, last)
		})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			w.logger.Error("[watch] => subscription interrupted; error: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(w.RetryIntervalSeconds) * time.Second):
		}
	}
}
