package memory

import (
	"sort"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/domain/repository"
)

// Client インメモリーのリポジトリー実装
// テスト用。永続化はしない
type Client struct {
	institutions map[uint]model.Institution
	accounts     map[uint]map[model.CurrencyType]model.Account
	transactions map[uint]map[string]model.Transaction
	snapshots    []model.BalanceSnapshot
	nextID       uint
}

// NewClient 生成
func NewClient() *Client {
	return &Client{
		institutions: map[uint]model.Institution{},
		accounts:     map[uint]map[model.CurrencyType]model.Account{},
		transactions: map[uint]map[string]model.Transaction{},
		snapshots:    []model.BalanceSnapshot{},
		nextID:       1,
	}
}

// AddInstitution 金融機関の新規登録
func (c *Client) AddInstitution(institution *model.Institution) error {
	institution.ID = c.nextID
	c.nextID++
	c.institutions[institution.ID] = *institution
	return nil
}

// GetInstitution 金融機関の取得
func (c *Client) GetInstitution(id uint) (*model.Institution, error) {
	institution, ok := c.institutions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &institution, nil
}

// GetInstitutions 金融機関の一覧取得
func (c *Client) GetInstitutions() ([]model.Institution, error) {
	institutions := make([]model.Institution, 0, len(c.institutions))
	for _, institution := range c.institutions {
		institutions = append(institutions, institution)
	}
	sort.Slice(institutions, func(i, j int) bool { return institutions[i].ID < institutions[j].ID })
	return institutions, nil
}

// SaveInstitution 金融機関の更新
func (c *Client) SaveInstitution(institution *model.Institution) error {
	if _, ok := c.institutions[institution.ID]; !ok {
		return repository.ErrNotFound
	}
	c.institutions[institution.ID] = *institution
	return nil
}

// UpdatePasswordInvalid 再連携フラグの更新
func (c *Client) UpdatePasswordInvalid(id uint, invalid bool) error {
	institution, ok := c.institutions[id]
	if !ok {
		return repository.ErrNotFound
	}
	institution.PasswordInvalid = invalid
	c.institutions[id] = institution
	return nil
}

// UpsertAccounts 口座情報の新規登録・更新
func (c *Client) UpsertAccounts(accounts []model.Account) error {
	for _, account := range accounts {
		byCurrency, ok := c.accounts[account.InstitutionID]
		if !ok {
			byCurrency = map[model.CurrencyType]model.Account{}
			c.accounts[account.InstitutionID] = byCurrency
		}
		byCurrency[account.Currency] = account
	}
	return nil
}

// GetAccounts 口座情報の一覧取得
func (c *Client) GetAccounts(institutionID uint) ([]model.Account, error) {
	accounts := []model.Account{}
	for _, account := range c.accounts[institutionID] {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Currency < accounts[j].Currency })
	return accounts, nil
}

// DeleteAccountsExcept 指定通貨以外の口座削除
func (c *Client) DeleteAccountsExcept(institutionID uint, keep []model.CurrencyType) error {
	keepSet := map[model.CurrencyType]bool{}
	for _, currency := range keep {
		keepSet[currency] = true
	}

	for currency := range c.accounts[institutionID] {
		if !keepSet[currency] {
			delete(c.accounts[institutionID], currency)
		}
	}
	return nil
}

// UpsertTransactions 入出金履歴の新規登録・更新
func (c *Client) UpsertTransactions(transactions []model.Transaction) error {
	for _, tx := range transactions {
		bySource, ok := c.transactions[tx.InstitutionID]
		if !ok {
			bySource = map[string]model.Transaction{}
			c.transactions[tx.InstitutionID] = bySource
		}
		bySource[tx.SourceID] = tx
	}
	return nil
}

// GetTransactions 入出金履歴の一覧取得
func (c *Client) GetTransactions(institutionID uint) ([]model.Transaction, error) {
	transactions := []model.Transaction{}
	for _, tx := range c.transactions[institutionID] {
		transactions = append(transactions, tx)
	}
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].Timestamp.Equal(transactions[j].Timestamp) {
			return transactions[i].SourceID < transactions[j].SourceID
		}
		return transactions[i].Timestamp.Before(transactions[j].Timestamp)
	})
	return transactions, nil
}

// AddSnapshot 資産残高の記録
func (c *Client) AddSnapshot(snapshot *model.BalanceSnapshot) error {
	c.snapshots = append(c.snapshots, *snapshot)
	return nil
}

// GetSnapshots 資産残高推移の取得
func (c *Client) GetSnapshots(institutionID uint, since time.Time) ([]model.BalanceSnapshot, error) {
	snapshots := []model.BalanceSnapshot{}
	for _, snapshot := range c.snapshots {
		if snapshot.InstitutionID == institutionID && !snapshot.RecordedAt.Before(since) {
			snapshots = append(snapshots, snapshot)
		}
	}
	return snapshots, nil
}
