package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCredentials 認証情報が不正（再連携が必要）
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMalformedResponse 取引所応答の形式が不正
	ErrMalformedResponse = errors.New("malformed response")
)

// InstitutionSource 取引所種別
type InstitutionSource string

// DisplayName 表示名
func (s InstitutionSource) DisplayName() string {
	switch s {
	case SourcePoloniex:
		return "Poloniex"
	case SourceCoinbase:
		return "Coinbase Pro"
	default:
		return string(s)
	}
}

// ParseToInstitutionSource 文字列をInstitutionSourceに変換
func ParseToInstitutionSource(value string) (InstitutionSource, error) {
	switch strings.ToLower(value) {
	case string(SourcePoloniex):
		return SourcePoloniex, nil
	case string(SourceCoinbase), "coinbasepro":
		return SourceCoinbase, nil
	default:
		return "", fmt.Errorf("failed to parse institution source, value: %s", value)
	}
}

// CurrencyType 通貨種別
type CurrencyType string

// CurrencyPair 通貨ペア
type CurrencyPair struct {
	// Key 対象通貨
	Key CurrencyType
	// Settlement 決済通貨
	Settlement CurrencyType
}

// String Poloniex表記（決済通貨_対象通貨）の文字列を返す
func (p *CurrencyPair) String() string {
	return fmt.Sprintf("%s_%s", p.Settlement, p.Key)
}

// AccountType 口座種別
type AccountType string

// TransactionCategory 入出金種別
type TransactionCategory string

// Institution 連携済みの金融機関
type Institution struct {
	ID              uint
	Source          InstitutionSource
	Name            string
	PasswordInvalid bool
	LastSyncedAt    time.Time
}

// Account 通貨別の口座残高
type Account struct {
	InstitutionID uint
	Currency      CurrencyType
	Type          AccountType
	Available     decimal.Decimal
	OnOrders      decimal.Decimal
	BTCValue      decimal.Decimal
	Hidden        bool
}

// Total 残高合計（利用可能分＋注文中）
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.OnOrders)
}

// IsZero 残高がゼロかどうか
func (a *Account) IsZero() bool {
	return a.Total().IsZero()
}

// Transaction 入出金履歴
type Transaction struct {
	SourceID      string
	InstitutionID uint
	Category      TransactionCategory
	Currency      CurrencyType
	Amount        decimal.Decimal
	Address       string
	Status        string
	Timestamp     time.Time
}

// BalanceSnapshot 資産残高のスナップショット
type BalanceSnapshot struct {
	InstitutionID uint
	BTCTotal      decimal.Decimal
	USDTTotal     decimal.Decimal
	RecordedAt    time.Time
}

// Credentials 取引所APIの認証情報
type Credentials struct {
	APIKey     string
	Secret     string
	Passphrase string
}

// SyncEventType 同期イベント種別
type SyncEventType string

// SyncEvent 同期イベント
type SyncEvent struct {
	InstitutionID uint
	Source        InstitutionSource
	Type          SyncEventType
	Accounts      int
	Transactions  int
	Err           string
	OccurredAt    time.Time
}
