package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/memory"
	"github.com/shopspring/decimal"
)

func TestExchangeMock_FetchAccounts(t *testing.T) {
	mock := memory.NewExchangeMock(model.SourcePoloniex)
	mock.SetAccounts([]model.Account{
		{
			Currency:  model.BTC,
			Type:      model.ExchangeAccount,
			Available: decimal.RequireFromString("1.5"),
		},
	})

	accounts, err := mock.FetchAccounts(context.Background())
	if err != nil {
		t.Errorf("error occured in FetchAccounts\nerror: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Accounts count is wrong\nwant: 1\ngot: %d\ngot detail: %#v", len(accounts), accounts)
	}
	if mock.FetchAccountsCalls != 1 {
		t.Errorf("FetchAccountsCalls is wrong\nwant: 1\ngot: %d", mock.FetchAccountsCalls)
	}
}

func TestExchangeMock_FetchTransactions_Window(t *testing.T) {
	mock := memory.NewExchangeMock(model.SourcePoloniex)
	mock.SetTransactions([]model.Transaction{
		{SourceID: "before", Timestamp: time.Date(2017, 12, 31, 23, 59, 59, 0, time.UTC)},
		{SourceID: "inside", Timestamp: time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC)},
		{SourceID: "at-end", Timestamp: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
	})

	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	transactions, err := mock.FetchTransactions(context.Background(), start, end)
	if err != nil {
		t.Errorf("error occured in FetchTransactions\nerror: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Transactions count is wrong\nwant: 1\ngot: %d\ngot detail: %#v", len(transactions), transactions)
	}
	if len(transactions) == 1 && transactions[0].SourceID != "inside" {
		t.Errorf("SourceID is wrong\nwant: inside\ngot: %s", transactions[0].SourceID)
	}
}

func TestExchangeMock_FailWith(t *testing.T) {
	mock := memory.NewExchangeMock(model.SourcePoloniex)
	mock.FailWith(model.ErrInvalidCredentials)

	if _, err := mock.FetchAccounts(context.Background()); err != model.ErrInvalidCredentials {
		t.Errorf("error is wrong\nwant: %v\ngot: %v", model.ErrInvalidCredentials, err)
	}
	if _, err := mock.FetchTransactions(context.Background(), time.Time{}, time.Now()); err != model.ErrInvalidCredentials {
		t.Errorf("error is wrong\nwant: %v\ngot: %v", model.ErrInvalidCredentials, err)
	}
	if mock.FetchAccountsCalls != 1 || mock.FetchTransactionsCalls != 1 {
		t.Errorf("call counts are wrong\ngot: %d, %d", mock.FetchAccountsCalls, mock.FetchTransactionsCalls)
	}
}
