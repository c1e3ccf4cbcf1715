package coinbase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain"
	"github.com/einsteinx2/balance-open/pkg/domain/model"
	coinbasepro "github.com/preichenberger/go-coinbasepro/v2"
	"github.com/shopspring/decimal"
)

const origin = "https://api.pro.coinbase.com"

// Client Coinbase Pro用クライアント
type Client struct {
	Logger domain.Logger
	api    *coinbasepro.Client
}

// NewClient クライアント生成
func NewClient(logger domain.Logger, accessKey, secretKey, passphrase string) *Client {
	api := coinbasepro.NewClient()
	api.UpdateConfig(&coinbasepro.ClientConfig{
		BaseURL:    origin,
		Key:        accessKey,
		Secret:     secretKey,
		Passphrase: passphrase,
	})
	return &Client{
		Logger: logger,
		api:    api,
	}
}

// Source 取引所種別
func (c *Client) Source() model.InstitutionSource {
	return model.SourceCoinbase
}

// FetchAccounts 残高取得
func (c *Client) FetchAccounts(ctx context.Context) ([]model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cbAccounts, err := c.api.GetAccounts()
	if err != nil {
		return nil, classifyError("GetAccounts", err)
	}

	accounts := make([]model.Account, 0, len(cbAccounts))
	for _, a := range cbAccounts {
		available, err := parseAmount("available", a.Available)
		if err != nil {
			return nil, err
		}
		hold, err := parseAmount("hold", a.Hold)
		if err != nil {
			return nil, err
		}

		account := model.Account{
			Currency:  model.CurrencyType(a.Currency),
			Type:      model.ExchangeAccount,
			Available: available,
			OnOrders:  hold,
		}
		// BTC換算はBTC口座のみ即値が取れる。他通貨はレート監視側で補完する
		if account.Currency == model.BTC {
			account.BTCValue = account.Total()
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// FetchTransactions 入出金履歴取得
// 口座ごとの台帳から入出金（transfer）だけを抽出する
func (c *Client) FetchTransactions(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	cbAccounts, err := c.api.GetAccounts()
	if err != nil {
		return nil, classifyError("GetAccounts", err)
	}

	transactions := []model.Transaction{}
	for _, a := range cbAccounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var ledger []coinbasepro.LedgerEntry
		cursor := c.api.ListAccountLedger(a.ID)
		for cursor.HasMore {
			if err := cursor.NextPage(&ledger); err != nil {
				return nil, classifyError("ListAccountLedger", err)
			}
			for _, e := range ledger {
				if e.Type != "transfer" {
					continue
				}
				tx, err := toTransaction(a.Currency, e)
				if err != nil {
					return nil, err
				}
				if tx.Timestamp.Before(start) || tx.Timestamp.After(end) {
					continue
				}
				transactions = append(transactions, *tx)
			}
		}
	}
	return transactions, nil
}

// toTransaction 台帳エントリーを入出金履歴へ変換
// 金額の符号で入金と出金を判別する
func toTransaction(currency string, e coinbasepro.LedgerEntry) (*model.Transaction, error) {
	amount, err := parseAmount("amount", e.Amount)
	if err != nil {
		return nil, err
	}

	category := model.Deposit
	if amount.IsNegative() {
		category = model.Withdrawal
		amount = amount.Abs()
	}

	return &model.Transaction{
		SourceID:  strconv.Itoa(e.ID),
		Category:  category,
		Currency:  model.CurrencyType(currency),
		Amount:    amount,
		Status:    "COMPLETE",
		Timestamp: e.CreatedAt.Time(),
	}, nil
}

// classifyError SDKのエラーを認証エラーとそれ以外に分類
func classifyError(operation string, err error) error {
	var apiErr coinbasepro.Error
	if errors.As(err, &apiErr) {
		message := strings.ToLower(apiErr.Message)
		for _, keyword := range []string{"invalid api key", "invalid passphrase", "invalid signature", "unauthorized"} {
			if strings.Contains(message, keyword) {
				return fmt.Errorf("%w; operation: %s, message: %s", model.ErrInvalidCredentials, operation, apiErr.Message)
			}
		}
	}
	return fmt.Errorf("failed to request coinbase, operation: %s; error: %w", operation, err)
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w; field: %s, value: %s", model.ErrMalformedResponse, field, value)
	}
	return v, nil
}
