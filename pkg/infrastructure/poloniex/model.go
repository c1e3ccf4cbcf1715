package poloniex

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CompleteBalance 通貨別残高
type CompleteBalance struct {
	Available string `json:"available"`
	OnOrders  string `json:"onOrders"`
	BTCValue  string `json:"btcValue"`
}

// Deposit 入金履歴
type Deposit struct {
	Currency      string `json:"currency"`
	Address       string `json:"address"`
	Amount        string `json:"amount"`
	Confirmations int    `json:"confirmations"`
	TxID          string `json:"txid"`
	Timestamp     int64  `json:"timestamp"`
	Status        string `json:"status"`
}

// Withdrawal 出金履歴
type Withdrawal struct {
	WithdrawalNumber uint64 `json:"withdrawalNumber"`
	Currency         string `json:"currency"`
	Address          string `json:"address"`
	Amount           string `json:"amount"`
	Timestamp        int64  `json:"timestamp"`
	Status           string `json:"status"`
	IPAddress        string `json:"ipAddress"`
}

// DepositsWithdrawals 入出金履歴の応答
type DepositsWithdrawals struct {
	Deposits    []Deposit    `json:"deposits"`
	Withdrawals []Withdrawal `json:"withdrawals"`
}

// checkError 応答へ埋め込まれたエラーの検出
// エラーでもHTTP 200のままエラーだけのJSONが返るため、構造の解析より先に確認する
func checkError(body []byte) error {
	var payload map[string]jsoniter.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		// オブジェクト以外はそのまま構造の解析に回す
		return nil
	}
	if len(payload) != 1 {
		return nil
	}
	raw, ok := payload["error"]
	if !ok {
		return nil
	}

	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		message = string(raw)
	}
	return fmt.Errorf("%w; message: %s", model.ErrInvalidCredentials, message)
}

// parseAccounts 残高応答を口座一覧へ変換
// 応答は通貨をキーとするマップのため、キーの通貨を各口座へ取り込む
func parseAccounts(body []byte) ([]model.Account, error) {
	if err := checkError(body); err != nil {
		return nil, err
	}

	var balances map[string]CompleteBalance
	if err := json.Unmarshal(body, &balances); err != nil {
		return nil, fmt.Errorf("%w; body: %s, error: %v", model.ErrMalformedResponse, body, err)
	}

	currencies := make([]string, 0, len(balances))
	for currency := range balances {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	accounts := make([]model.Account, 0, len(balances))
	for _, currency := range currencies {
		b := balances[currency]

		available, err := parseAmount("available", b.Available)
		if err != nil {
			return nil, err
		}
		onOrders, err := parseAmount("onOrders", b.OnOrders)
		if err != nil {
			return nil, err
		}
		btcValue, err := parseAmount("btcValue", b.BTCValue)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, model.Account{
			Currency:  model.CurrencyType(currency),
			Type:      model.ExchangeAccount,
			Available: available,
			OnOrders:  onOrders,
			BTCValue:  btcValue,
		})
	}
	return accounts, nil
}

// parseTransactions 入出金応答を履歴一覧へ変換
// 入金と出金の配列を種別付きの履歴へ揃える
func parseTransactions(body []byte) ([]model.Transaction, error) {
	if err := checkError(body); err != nil {
		return nil, err
	}

	var history DepositsWithdrawals
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("%w; body: %s, error: %v", model.ErrMalformedResponse, body, err)
	}

	transactions := make([]model.Transaction, 0, len(history.Deposits)+len(history.Withdrawals))
	for _, d := range history.Deposits {
		amount, err := parseAmount("amount", d.Amount)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, model.Transaction{
			SourceID:  d.TxID,
			Category:  model.Deposit,
			Currency:  model.CurrencyType(d.Currency),
			Amount:    amount,
			Address:   d.Address,
			Status:    d.Status,
			Timestamp: time.Unix(d.Timestamp, 0).UTC(),
		})
	}
	for _, w := range history.Withdrawals {
		amount, err := parseAmount("amount", w.Amount)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, model.Transaction{
			SourceID:  strconv.FormatUint(w.WithdrawalNumber, 10),
			Category:  model.Withdrawal,
			Currency:  model.CurrencyType(w.Currency),
			Amount:    amount,
			Address:   w.Address,
			Status:    w.Status,
			Timestamp: time.Unix(w.Timestamp, 0).UTC(),
		})
	}
	return transactions, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w; field: %s, value: %s", model.ErrMalformedResponse, field, value)
	}
	return v, nil
}
