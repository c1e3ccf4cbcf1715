package memory

import (
	"context"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

// ExchangeMock 取引所モック
// テスト用。設定した値をそのまま返す
type ExchangeMock struct {
	source       model.InstitutionSource
	accounts     []model.Account
	transactions []model.Transaction
	err          error

	FetchAccountsCalls     int
	FetchTransactionsCalls int
}

// NewExchangeMock 生成
func NewExchangeMock(source model.InstitutionSource) *ExchangeMock {
	return &ExchangeMock{
		source:       source,
		accounts:     []model.Account{},
		transactions: []model.Transaction{},
	}
}

// SetAccounts 取得させる口座情報を設定
func (e *ExchangeMock) SetAccounts(accounts []model.Account) {
	e.accounts = accounts
}

// SetTransactions 取得させる入出金履歴を設定
func (e *ExchangeMock) SetTransactions(transactions []model.Transaction) {
	e.transactions = transactions
}

// FailWith 以降の呼び出しを失敗させる
func (e *ExchangeMock) FailWith(err error) {
	e.err = err
}

// Source 取引所種別を取得
func (e *ExchangeMock) Source() model.InstitutionSource {
	return e.source
}

// FetchAccounts 口座情報を取得
func (e *ExchangeMock) FetchAccounts(ctx context.Context) ([]model.Account, error) {
	e.FetchAccountsCalls++
	if e.err != nil {
		return nil, e.err
	}

	accounts := make([]model.Account, len(e.accounts))
	copy(accounts, e.accounts)
	return accounts, nil
}

// FetchTransactions 入出金履歴を取得
func (e *ExchangeMock) FetchTransactions(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	e.FetchTransactionsCalls++
	if e.err != nil {
		return nil, e.err
	}

	transactions := []model.Transaction{}
	for _, tx := range e.transactions {
		if tx.Timestamp.Before(start) || !tx.Timestamp.Before(end) {
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
