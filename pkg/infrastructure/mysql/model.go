package mysql

import (
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/shopspring/decimal"
)

// Institution 金融機関情報
type Institution struct {
	ID              uint
	Source          string
	Name            string
	PasswordInvalid bool
	LastSyncedAt    time.Time
}

// NewInstitution 生成
func NewInstitution(org *model.Institution) *Institution {
	return &Institution{
		ID:              org.ID,
		Source:          string(org.Source),
		Name:            org.Name,
		PasswordInvalid: org.PasswordInvalid,
		LastSyncedAt:    org.LastSyncedAt,
	}
}

// ToDomainModel ドメインモデルに変換
func (i *Institution) ToDomainModel() (*model.Institution, error) {
	source, err := model.ParseToInstitutionSource(i.Source)
	if err != nil {
		return nil, err
	}

	return &model.Institution{
		ID:              i.ID,
		Source:          source,
		Name:            i.Name,
		PasswordInvalid: i.PasswordInvalid,
		LastSyncedAt:    i.LastSyncedAt,
	}, nil
}

// Account 口座情報
type Account struct {
	InstitutionID uint   `gorm:"primaryKey"`
	Currency      string `gorm:"primaryKey"`
	AccountType   int
	Available     decimal.Decimal
	OnOrders      decimal.Decimal
	BTCValue      decimal.Decimal
	Hidden        bool
}

// NewAccount 生成
func NewAccount(org *model.Account) *Account {
	var accountType int
	switch org.Type {
	case model.ExchangeAccount:
		accountType = 0
	case model.MarginAccount:
		accountType = 1
	case model.LendingAccount:
		accountType = 2
	}

	return &Account{
		InstitutionID: org.InstitutionID,
		Currency:      string(org.Currency),
		AccountType:   accountType,
		Available:     org.Available,
		OnOrders:      org.OnOrders,
		BTCValue:      org.BTCValue,
		Hidden:        org.Hidden,
	}
}

// ToDomainModel ドメインモデルに変換
func (a *Account) ToDomainModel() *model.Account {
	var accountType model.AccountType
	switch a.AccountType {
	case 0:
		accountType = model.ExchangeAccount
	case 1:
		accountType = model.MarginAccount
	case 2:
		accountType = model.LendingAccount
	}

	return &model.Account{
		InstitutionID: a.InstitutionID,
		Currency:      model.CurrencyType(a.Currency),
		Type:          accountType,
		Available:     a.Available,
		OnOrders:      a.OnOrders,
		BTCValue:      a.BTCValue,
		Hidden:        a.Hidden,
	}
}

const (
	DepositCategory    = 0
	WithdrawalCategory = 1
)

// Transaction 入出金履歴情報
type Transaction struct {
	InstitutionID uint   `gorm:"primaryKey"`
	SourceID      string `gorm:"primaryKey"`
	Category      int
	Currency      string
	Amount        decimal.Decimal
	Address       string
	Status        string
	Timestamp     time.Time
}

// NewTransaction 生成
func NewTransaction(org *model.Transaction) *Transaction {
	category := DepositCategory
	if org.Category == model.Withdrawal {
		category = WithdrawalCategory
	}

	return &Transaction{
		InstitutionID: org.InstitutionID,
		SourceID:      org.SourceID,
		Category:      category,
		Currency:      string(org.Currency),
		Amount:        org.Amount,
		Address:       org.Address,
		Status:        org.Status,
		Timestamp:     org.Timestamp,
	}
}

// ToDomainModel ドメインモデルに変換
func (t *Transaction) ToDomainModel() *model.Transaction {
	category := model.Deposit
	if t.Category == WithdrawalCategory {
		category = model.Withdrawal
	}

	return &model.Transaction{
		InstitutionID: t.InstitutionID,
		SourceID:      t.SourceID,
		Category:      category,
		Currency:      model.CurrencyType(t.Currency),
		Amount:        t.Amount,
		Address:       t.Address,
		Status:        t.Status,
		Timestamp:     t.Timestamp,
	}
}

// BalanceSnapshot 資産残高情報
type BalanceSnapshot struct {
	ID            uint64
	InstitutionID uint
	BTCTotal      decimal.Decimal
	USDTTotal     decimal.Decimal
	RecordedAt    time.Time
}

// NewBalanceSnapshot 生成
func NewBalanceSnapshot(org *model.BalanceSnapshot) *BalanceSnapshot {
	return &BalanceSnapshot{
		InstitutionID: org.InstitutionID,
		BTCTotal:      org.BTCTotal,
		USDTTotal:     org.USDTTotal,
		RecordedAt:    org.RecordedAt,
	}
}

// ToDomainModel ドメインモデルに変換
func (s *BalanceSnapshot) ToDomainModel() *model.BalanceSnapshot {
	return &model.BalanceSnapshot{
		InstitutionID: s.InstitutionID,
		BTCTotal:      s.BTCTotal,
		USDTTotal:     s.USDTTotal,
		RecordedAt:    s.RecordedAt,
	}
}
