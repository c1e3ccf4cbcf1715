package poloniex

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/memory"
)

func newTestClient(origin string) *Client {
	c := NewClient(&memory.Logger{Level: memory.Error}, "test-key", "test-secret")
	c.origin = origin
	return c
}

func TestClient_FetchAccounts(t *testing.T) {
	var gotMethod, gotContentType, gotKey, gotSign, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotKey = r.Header.Get("Key")
		gotSign = r.Header.Get("Sign")
		b, _ := ioutil.ReadAll(r.Body)
		gotBody = string(b)

		w.Write([]byte(`{"BTC": {"available": "1.5", "onOrders": "0.5", "btcValue": "2.0"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	accounts, err := c.FetchAccounts(context.Background())
	if err != nil {
		t.Fatalf("error occured in FetchAccounts\nerror: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts count is wrong\nwant: 1\ngot: %d\ngot detail: %#v", len(accounts), accounts)
	}
	if accounts[0].Currency != model.BTC {
		t.Errorf("currency is wrong\nwant: %s\ngot: %s", model.BTC, accounts[0].Currency)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method is wrong\nwant: POST\ngot: %s", gotMethod)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("content type is wrong\ngot: %s", gotContentType)
	}
	if gotKey != "test-key" {
		t.Errorf("Key header is wrong\nwant: test-key\ngot: %s", gotKey)
	}

	values, err := url.ParseQuery(gotBody)
	if err != nil {
		t.Fatalf("request body is not form encoded\nbody: %s\nerror: %v", gotBody, err)
	}
	if got := values.Get("command"); got != "returnCompleteBalances" {
		t.Errorf("command is wrong\nwant: returnCompleteBalances\ngot: %s", got)
	}
	if values.Get("nonce") == "" {
		t.Errorf("nonce is missing\nbody: %s", gotBody)
	}
	if want := computeHmac512(gotBody, "test-secret"); want != gotSign {
		t.Errorf("Sign header is not the signature of the request body\nwant: %s\ngot: %s", want, gotSign)
	}
}

func TestClient_FetchAccounts_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "Permission denied."}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchAccounts(context.Background())
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("error kind is wrong\nwant: %v\ngot: %v", model.ErrInvalidCredentials, err)
	}
}

func TestClient_FetchAccounts_ErrorBody(t *testing.T) {
	// HTTP 200のままエラーJSONが返るケース
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Invalid API key/secret pair."}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchAccounts(context.Background())
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("error kind is wrong\nwant: %v\ngot: %v", model.ErrInvalidCredentials, err)
	}
}

func TestClient_FetchAccounts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.FetchAccounts(context.Background())
	if err == nil {
		t.Fatal("error is nil")
	}
	if errors.Is(err, model.ErrInvalidCredentials) || errors.Is(err, model.ErrMalformedResponse) {
		t.Errorf("error kind is wrong\ngot: %v", err)
	}
}

func TestClient_FetchTransactions(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := ioutil.ReadAll(r.Body)
		gotBody = string(b)

		w.Write([]byte(`{
			"deposits": [{"currency": "ETH", "address": "0xabc", "amount": "3.0", "confirmations": 30, "txid": "0xdef", "timestamp": 1523110000, "status": "COMPLETE"}],
			"withdrawals": []
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	start := time.Unix(0, 0)
	end := time.Unix(1523120000, 0)
	transactions, err := c.FetchTransactions(context.Background(), start, end)
	if err != nil {
		t.Fatalf("error occured in FetchTransactions\nerror: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("transactions count is wrong\nwant: 1\ngot: %d", len(transactions))
	}
	if transactions[0].Category != model.Deposit {
		t.Errorf("category is wrong\nwant: %s\ngot: %s", model.Deposit, transactions[0].Category)
	}

	values, err := url.ParseQuery(gotBody)
	if err != nil {
		t.Fatalf("request body is not form encoded\nbody: %s\nerror: %v", gotBody, err)
	}
	if got := values.Get("command"); got != "returnDepositsWithdrawals" {
		t.Errorf("command is wrong\nwant: returnDepositsWithdrawals\ngot: %s", got)
	}
	if got := values.Get("start"); got != "0" {
		t.Errorf("start is wrong\nwant: 0\ngot: %s", got)
	}
	if got := values.Get("end"); got != "1523120000" {
		t.Errorf("end is wrong\nwant: 1523120000\ngot: %s", got)
	}
}
