package memory

import (
	"time"

	cache "github.com/pmylund/go-cache"
	"github.com/shopspring/decimal"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

// RateCache 交換レートのインメモリーキャッシュ
// TTLを過ぎたレートは取得できない
type RateCache struct {
	store *cache.Cache
}

// NewRateCache 生成
func NewRateCache(ttl time.Duration) *RateCache {
	return &RateCache{
		store: cache.New(ttl, ttl),
	}
}

// SetRate レートを保存
func (c *RateCache) SetRate(pair model.CurrencyPair, rate decimal.Decimal) {
	c.store.Set(pair.String(), rate, cache.DefaultExpiration)
}

// GetRate レートを取得
func (c *RateCache) GetRate(pair model.CurrencyPair) (decimal.Decimal, bool) {
	v, ok := c.store.Get(pair.String())
	if !ok {
		return decimal.Zero, false
	}
	rate, ok := v.(decimal.Decimal)
	return rate, ok
}
