package exchange

import (
	"context"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

// Client 取引所クライアント
type Client interface {
	Source() model.InstitutionSource
	FetchAccounts(ctx context.Context) ([]model.Account, error)
	FetchTransactions(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
}
