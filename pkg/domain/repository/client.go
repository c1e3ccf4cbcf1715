package repository

import (
	"errors"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

// ErrNotFound レコードが存在しない
var ErrNotFound = errors.New("record not found")

// InstitutionRepository 金融機関用リポジトリ
type InstitutionRepository interface {
	AddInstitution(*model.Institution) error
	GetInstitution(id uint) (*model.Institution, error)
	GetInstitutions() ([]model.Institution, error)
	SaveInstitution(*model.Institution) error
	UpdatePasswordInvalid(id uint, invalid bool) error
}

// AccountRepository 口座用リポジトリ
type AccountRepository interface {
	UpsertAccounts([]model.Account) error
	GetAccounts(institutionID uint) ([]model.Account, error)
	DeleteAccountsExcept(institutionID uint, keep []model.CurrencyType) error
}

// TransactionRepository 入出金履歴用リポジトリ
type TransactionRepository interface {
	UpsertTransactions([]model.Transaction) error
	GetTransactions(institutionID uint) ([]model.Transaction, error)
}

// SnapshotRepository 資産残高推移用リポジトリ
type SnapshotRepository interface {
	AddSnapshot(*model.BalanceSnapshot) error
	GetSnapshots(institutionID uint, since time.Time) ([]model.BalanceSnapshot, error)
}
