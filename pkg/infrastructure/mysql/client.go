package mysql

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/domain/repository"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Client MySQL用クライアント
type Client struct {
	db *gorm.DB
}

// NewClient MySQL用クライアントの生成
func NewClient(userName, password, dbHost string, dbPort int, dbName string) *Client {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8&parseTime=True&loc=Local", userName, password, dbHost, dbPort, dbName)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Got error when connect database, the error is '%v'", err)
	}

	return &Client{
		db: db,
	}
}

// NewClientWithDB 接続済みDBからのクライアント生成
func NewClientWithDB(db *gorm.DB) *Client {
	return &Client{
		db: db,
	}
}

// AddInstitution 金融機関の新規登録
func (c *Client) AddInstitution(institution *model.Institution) error {
	record := NewInstitution(institution)
	if err := c.db.Create(record).Error; err != nil {
		return err
	}

	institution.ID = record.ID
	return nil
}

// GetInstitution 金融機関の取得
func (c *Client) GetInstitution(id uint) (*model.Institution, error) {
	var record Institution
	if err := c.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomainModel()
}

// GetInstitutions 金融機関の一覧取得
func (c *Client) GetInstitutions() ([]model.Institution, error) {
	records := []Institution{}
	if err := c.db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}

	institutions := []model.Institution{}
	for _, record := range records {
		institution, err := record.ToDomainModel()
		if err != nil {
			return nil, err
		}
		institutions = append(institutions, *institution)
	}
	return institutions, nil
}

// SaveInstitution 金融機関の更新
func (c *Client) SaveInstitution(institution *model.Institution) error {
	return c.db.Save(NewInstitution(institution)).Error
}

// UpdatePasswordInvalid 再連携フラグの更新
func (c *Client) UpdatePasswordInvalid(id uint, invalid bool) error {
	return c.db.Model(&Institution{}).Where("id = ?", id).Update("password_invalid", invalid).Error
}

// UpsertAccounts 口座情報の新規登録・更新
func (c *Client) UpsertAccounts(accounts []model.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	records := []Account{}
	for _, account := range accounts {
		records = append(records, *NewAccount(&account))
	}

	return c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error
}

// GetAccounts 口座情報の一覧取得
func (c *Client) GetAccounts(institutionID uint) ([]model.Account, error) {
	records := []Account{}
	if err := c.db.Where("institution_id = ?", institutionID).Order("currency").Find(&records).Error; err != nil {
		return nil, err
	}

	accounts := []model.Account{}
	for _, record := range records {
		accounts = append(accounts, *record.ToDomainModel())
	}
	return accounts, nil
}

// DeleteAccountsExcept 指定通貨以外の口座削除
// 取引所の応答から消えた通貨をローカルからも消すために使う
func (c *Client) DeleteAccountsExcept(institutionID uint, keep []model.CurrencyType) error {
	if len(keep) == 0 {
		return c.db.Where("institution_id = ?", institutionID).Delete(&Account{}).Error
	}

	currencies := make([]string, 0, len(keep))
	for _, currency := range keep {
		currencies = append(currencies, string(currency))
	}
	return c.db.Where("institution_id = ? AND currency NOT IN ?", institutionID, currencies).Delete(&Account{}).Error
}

// UpsertTransactions 入出金履歴の新規登録・更新
func (c *Client) UpsertTransactions(transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	records := []Transaction{}
	for _, tx := range transactions {
		records = append(records, *NewTransaction(&tx))
	}

	return c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error
}

// GetTransactions 入出金履歴の一覧取得
func (c *Client) GetTransactions(institutionID uint) ([]model.Transaction, error) {
	records := []Transaction{}
	if err := c.db.Where("institution_id = ?", institutionID).Order("timestamp").Find(&records).Error; err != nil {
		return nil, err
	}

	transactions := []model.Transaction{}
	for _, record := range records {
		transactions = append(transactions, *record.ToDomainModel())
	}
	return transactions, nil
}

// AddSnapshot 資産残高の記録
func (c *Client) AddSnapshot(snapshot *model.BalanceSnapshot) error {
	return c.db.Create(NewBalanceSnapshot(snapshot)).Error
}

// GetSnapshots 資産残高推移の取得
func (c *Client) GetSnapshots(institutionID uint, since time.Time) ([]model.BalanceSnapshot, error) {
	records := []BalanceSnapshot{}
	if err := c.db.Where("institution_id = ? AND recorded_at >= ?", institutionID, since).Order("recorded_at").Find(&records).Error; err != nil {
		return nil, err
	}

	snapshots := []model.BalanceSnapshot{}
	for _, record := range records {
		snapshots = append(snapshots, *record.ToDomainModel())
	}
	return snapshots, nil
}
