package coinbase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/memory"
	"github.com/shopspring/decimal"
)

// testSecret SDKが署名時にbase64復号するため、正しいbase64である必要がある
const testSecret = "c2VjcmV0"

func newTestClient(origin string) *Client {
	c := NewClient(&memory.Logger{Level: memory.Error}, "test-key", testSecret, "test-pass")
	c.api.BaseURL = origin
	return c
}

func TestClient_FetchAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts":
			w.Write([]byte(`[
				{"id": "a1b2", "currency": "BTC", "balance": "1.100", "available": "1.000", "hold": "0.100"},
				{"id": "c3d4", "currency": "USD", "balance": "50.00", "available": "50.00", "hold": "0.00"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	accounts, err := c.FetchAccounts(context.Background())
	if err != nil {
		t.Fatalf("error occured in FetchAccounts\nerror: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts count is wrong\nwant: 2\ngot: %d\ngot detail: %#v", len(accounts), accounts)
	}

	btc := accounts[0]
	if btc.Currency != model.BTC {
		t.Errorf("currency is wrong\nwant: %s\ngot: %s", model.BTC, btc.Currency)
	}
	if !btc.Available.Equal(decimal.RequireFromString("1")) {
		t.Errorf("available is wrong\nwant: 1\ngot: %s", btc.Available)
	}
	if !btc.OnOrders.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("onOrders is wrong\nwant: 0.1\ngot: %s", btc.OnOrders)
	}
	if !btc.BTCValue.Equal(decimal.RequireFromString("1.1")) {
		t.Errorf("btcValue is wrong\nwant: 1.1\ngot: %s", btc.BTCValue)
	}

	usd := accounts[1]
	if usd.Currency != model.CurrencyType("USD") {
		t.Errorf("currency is wrong\nwant: USD\ngot: %s", usd.Currency)
	}
	if !usd.BTCValue.IsZero() {
		t.Errorf("btcValue is wrong\nwant: 0\ngot: %s", usd.BTCValue)
	}
}

func TestClient_FetchAccounts_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Invalid API Key"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchAccounts(context.Background())
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("error kind is wrong\nwant: %v\ngot: %v", model.ErrInvalidCredentials, err)
	}
}

func TestClient_FetchTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts":
			w.Write([]byte(`[{"id": "a1b2", "currency": "BTC", "balance": "1.0", "available": "1.0", "hold": "0.0"}]`))
		case "/accounts/a1b2/ledger":
			w.Write([]byte(`[
				{"id": 100, "created_at": "2018-04-07T15:26:40Z", "amount": "0.50", "balance": "1.10", "type": "transfer", "details": {}},
				{"id": 101, "created_at": "2018-04-06T15:26:40Z", "amount": "-0.25", "balance": "0.60", "type": "transfer", "details": {}},
				{"id": 102, "created_at": "2018-04-05T15:26:40Z", "amount": "0.10", "balance": "0.85", "type": "match", "details": {}}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	start := time.Unix(0, 0)
	end := time.Now()
	transactions, err := c.FetchTransactions(context.Background(), start, end)
	if err != nil {
		t.Fatalf("error occured in FetchTransactions\nerror: %v", err)
	}

	// type=matchの取引は含まれない
	if len(transactions) != 2 {
		t.Fatalf("transactions count is wrong\nwant: 2\ngot: %d\ngot detail: %#v", len(transactions), transactions)
	}

	deposit := transactions[0]
	if deposit.SourceID != "100" {
		t.Errorf("source id is wrong\nwant: 100\ngot: %s", deposit.SourceID)
	}
	if deposit.Category != model.Deposit {
		t.Errorf("category is wrong\nwant: %s\ngot: %s", model.Deposit, deposit.Category)
	}
	if !deposit.Amount.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("amount is wrong\nwant: 0.5\ngot: %s", deposit.Amount)
	}

	withdrawal := transactions[1]
	if withdrawal.Category != model.Withdrawal {
		t.Errorf("category is wrong\nwant: %s\ngot: %s", model.Withdrawal, withdrawal.Category)
	}
	if !withdrawal.Amount.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("amount is wrong\nwant: 0.25\ngot: %s", withdrawal.Amount)
	}
}

func TestClient_FetchTransactions_WindowFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts":
			w.Write([]byte(`[{"id": "a1b2", "currency": "BTC", "balance": "1.0", "available": "1.0", "hold": "0.0"}]`))
		case "/accounts/a1b2/ledger":
			w.Write([]byte(`[
				{"id": 100, "created_at": "2018-04-07T15:26:40Z", "amount": "0.50", "balance": "1.10", "type": "transfer", "details": {}},
				{"id": 101, "created_at": "2017-01-01T00:00:00Z", "amount": "0.25", "balance": "0.60", "type": "transfer", "details": {}}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	transactions, err := c.FetchTransactions(context.Background(), start, end)
	if err != nil {
		t.Fatalf("error occured in FetchTransactions\nerror: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("transactions count is wrong\nwant: 1\ngot: %d\ngot detail: %#v", len(transactions), transactions)
	}
	if transactions[0].SourceID != "100" {
		t.Errorf("source id is wrong\nwant: 100\ngot: %s", transactions[0].SourceID)
	}
}
