package poloniex

import (
	"context"
	"net/http"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain"
	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"golang.org/x/time/rate"
)

const (
	tradingOrigin = "https://poloniex.com/tradingApi"
	pushOrigin    = "wss://api2.poloniex.com"
)

// Client Poloniex用クライアント
// nonceの単調増加を保つため、同一認証情報に対してクライアントは一つに保つ
type Client struct {
	Logger       domain.Logger
	APIAccessKey string
	APISecretKey string

	httpClient *http.Client
	limiter    *rate.Limiter
	signer     *signer
	origin     string
}

// NewClient クライアント生成
func NewClient(logger domain.Logger, accessKey, secretKey string) *Client {
	return &Client{
		Logger:       logger,
		APIAccessKey: accessKey,
		APISecretKey: secretKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(6, 2),
		signer:       newSigner(),
		origin:       tradingOrigin,
	}
}

// Source 取引所種別
func (c *Client) Source() model.InstitutionSource {
	return model.SourcePoloniex
}

// FetchAccounts 残高取得（通貨別口座）
func (c *Client) FetchAccounts(ctx context.Context) ([]model.Account, error) {
	body, err := c.returnCompleteBalances(ctx)
	if err != nil {
		return nil, err
	}
	return parseAccounts(body)
}

// FetchTransactions 入出金履歴取得
func (c *Client) FetchTransactions(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	body, err := c.returnDepositsWithdrawals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return parseTransactions(body)
}
