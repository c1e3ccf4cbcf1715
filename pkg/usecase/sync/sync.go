package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/einsteinx2/balance-open/pkg/domain"
	"github.com/einsteinx2/balance-open/pkg/domain/exchange"
	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/domain/repository"
)

// RateSource 交換レートの取得元
type RateSource interface {
	// GetRate レートを取得
	GetRate(pair model.CurrencyPair) (decimal.Decimal, bool)
}

// Policy 同期ポリシー
type Policy struct {
	// PrimaryCurrencies 残高ゼロでも非表示にしない主要通貨
	PrimaryCurrencies []model.CurrencyType
}

// DefaultPolicy 既定の同期ポリシー
func DefaultPolicy() Policy {
	return Policy{
		PrimaryCurrencies: []model.CurrencyType{model.BTC, model.USDT},
	}
}

// IsPrimary 主要通貨かどうか
func (p *Policy) IsPrimary(currency model.CurrencyType) bool {
	return containsCurrency(p.PrimaryCurrencies, currency)
}

// Params 同期処理用パラメータ
// RatesとEventsはnil可
type Params struct {
	Logger   domain.Logger
	Exchange exchange.Client
	InstRepo repository.InstitutionRepository
	AcctRepo repository.AccountRepository
	TxRepo   repository.TransactionRepository
	SnapRepo repository.SnapshotRepository
	Rates    RateSource
	Events   chan<- model.SyncEvent
	Policy   Policy
}

// Syncer 金融機関の同期処理
// 認証前の操作はAuthenticateのみ
type Syncer struct {
	params Params
}

// NewSyncer 生成
func NewSyncer(params *Params) *Syncer {
	return &Syncer{
		params: *params,
	}
}

// Authenticate 認証と初回の残高同期
// existingがnilの場合は金融機関を新規登録する
// 認証に成功するまで金融機関・口座情報には書き込まない
func (s *Syncer) Authenticate(ctx context.Context, existing *model.Institution) (*Session, []model.Account, error) {
	source := s.params.Exchange.Source()

	institution := existing
	if institution == nil {
		institution = &model.Institution{
			Source: source,
			Name:   source.DisplayName(),
		}
	}

	sess := &Session{
		params:      s.params,
		institution: institution,
		state:       Idle,
	}
	if err := sess.transition(Authenticating); err != nil {
		return nil, nil, err
	}

	s.params.Logger.Debug("[sync] => authenticating (source: %s)", source)

	accounts, err := s.params.Exchange.FetchAccounts(ctx)
	if err != nil {
		sess.fail(err)
		return nil, nil, fmt.Errorf("failed to authenticate, source: %s; error: %w", source, err)
	}

	if err := sess.transition(Syncing); err != nil {
		return nil, nil, err
	}

	institution.PasswordInvalid = false
	institution.LastSyncedAt = time.Now()
	if institution.ID == 0 {
		err = s.params.InstRepo.AddInstitution(institution)
	} else {
		err = s.params.InstRepo.SaveInstitution(institution)
	}
	if err != nil {
		sess.fail(err)
		return nil, nil, fmt.Errorf("failed to store institution, source: %s; error: %w", source, err)
	}

	if err := sess.reconcileAccounts(accounts); err != nil {
		sess.fail(err)
		return nil, nil, fmt.Errorf("failed to reconcile accounts, institution: %d; error: %w", institution.ID, err)
	}

	if err := sess.recordSnapshot(accounts); err != nil {
		sess.fail(err)
		return nil, nil, fmt.Errorf("failed to record snapshot, institution: %d; error: %w", institution.ID, err)
	}

	if err := sess.transition(Done); err != nil {
		return nil, nil, err
	}

	sess.emit(model.EventAuthenticated, len(accounts), 0, nil)
	s.params.Logger.Info("[sync] => authenticated (institution: %d, accounts: %d)", institution.ID, len(accounts))

	return sess, accounts, nil
}

// Run 認証から入出金履歴までの初回同期を実施
func (s *Syncer) Run(ctx context.Context, existing *model.Institution) (*Session, error) {
	start := time.Now()
	source := string(s.params.Exchange.Source())

	sess, accounts, err := s.Authenticate(ctx, existing)
	if err != nil {
		syncRunsTotal.WithLabelValues(source, "failure").Inc()
		return nil, err
	}

	transactions, err := sess.SyncTransactions(ctx)
	if err != nil {
		syncRunsTotal.WithLabelValues(source, "failure").Inc()
		return nil, err
	}

	syncRunsTotal.WithLabelValues(source, "success").Inc()
	syncRunDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	sess.emit(model.EventSyncCompleted, len(accounts), len(transactions), nil)
	return sess, nil
}

// Session 認証済みの同期セッション
// 単一ゴルーチンからの利用を前提とする
type Session struct {
	params      Params
	institution *model.Institution
	state       State
}

// State 現在の状態
func (s *Session) State() State {
	return s.state
}

// Institution 連携中の金融機関
func (s *Session) Institution() *model.Institution {
	return s.institution
}

// SyncBalances 残高を同期
func (s *Session) SyncBalances(ctx context.Context) ([]model.Account, error) {
	if err := s.transition(Syncing); err != nil {
		return nil, err
	}

	accounts, err := s.syncBalances(ctx)
	if err != nil {
		s.fail(err)
		return nil, fmt.Errorf("failed to sync balances, institution: %d; error: %w", s.institution.ID, err)
	}

	if err := s.finishRound(accounts); err != nil {
		s.fail(err)
		return nil, fmt.Errorf("failed to sync balances, institution: %d; error: %w", s.institution.ID, err)
	}

	if err := s.transition(Done); err != nil {
		return nil, err
	}

	s.emit(model.EventBalancesSynced, len(accounts), 0, nil)
	s.params.Logger.Debug("[sync] => balances synced (institution: %d, accounts: %d)", s.institution.ID, len(accounts))
	return accounts, nil
}

// SyncTransactions 入出金履歴を同期
func (s *Session) SyncTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := s.transition(Syncing); err != nil {
		return nil, err
	}

	transactions, err := s.syncTransactions(ctx)
	if err != nil {
		s.fail(err)
		return nil, fmt.Errorf("failed to sync transactions, institution: %d; error: %w", s.institution.ID, err)
	}

	s.institution.LastSyncedAt = time.Now()
	if err := s.params.InstRepo.SaveInstitution(s.institution); err != nil {
		s.fail(err)
		return nil, fmt.Errorf("failed to sync transactions, institution: %d; error: %w", s.institution.ID, err)
	}

	if err := s.transition(Done); err != nil {
		return nil, err
	}

	s.emit(model.EventTransactionsSynced, 0, len(transactions), nil)
	s.params.Logger.Debug("[sync] => transactions synced (institution: %d, transactions: %d)", s.institution.ID, len(transactions))
	return transactions, nil
}

// Refresh 残高・入出金履歴・スナップショットを一括同期
func (s *Session) Refresh(ctx context.Context) error {
	start := time.Now()
	source := string(s.params.Exchange.Source())

	if err := s.transition(Syncing); err != nil {
		return err
	}

	accounts, transactions, err := s.syncAll(ctx)
	if err != nil {
		s.fail(err)
		syncRunsTotal.WithLabelValues(source, "failure").Inc()
		return fmt.Errorf("failed to refresh, institution: %d; error: %w", s.institution.ID, err)
	}

	if err := s.transition(Done); err != nil {
		return err
	}

	syncRunsTotal.WithLabelValues(source, "success").Inc()
	syncRunDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	s.emit(model.EventSyncCompleted, len(accounts), len(transactions), nil)
	s.params.Logger.Info("[sync] => refreshed (institution: %d, accounts: %d, transactions: %d)", s.institution.ID, len(accounts), len(transactions))
	return nil
}

// syncAll 同期処理の本体
func (s *Session) syncAll(ctx context.Context) ([]model.Account, []model.Transaction, error) {
	accounts, err := s.syncBalances(ctx)
	if err != nil {
		return nil, nil, err
	}

	transactions, err := s.syncTransactions(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := s.finishRound(accounts); err != nil {
		return nil, nil, err
	}

	return accounts, transactions, nil
}

// syncBalances 残高を取得して突合
func (s *Session) syncBalances(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.params.Exchange.FetchAccounts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.reconcileAccounts(accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

// syncTransactions 入出金履歴を取得して登録
// 取得範囲は毎回エポックから現在まで。差分カーソルは持たず、重複は突合で吸収する
func (s *Session) syncTransactions(ctx context.Context) ([]model.Transaction, error) {
	transactions, err := s.params.Exchange.FetchTransactions(ctx, time.Unix(0, 0), time.Now())
	if err != nil {
		return nil, err
	}

	for i := range transactions {
		transactions[i].InstitutionID = s.institution.ID
	}
	if err := s.params.TxRepo.UpsertTransactions(transactions); err != nil {
		return nil, err
	}

	return transactions, nil
}

// finishRound スナップショット記録と最終同期日時の更新
func (s *Session) finishRound(accounts []model.Account) error {
	if err := s.recordSnapshot(accounts); err != nil {
		return err
	}

	s.institution.LastSyncedAt = time.Now()
	return s.params.InstRepo.SaveInstitution(s.institution)
}

// reconcileAccounts 取得した口座情報とローカルを突合
// 取得結果に存在する通貨は登録・更新、存在しない通貨は削除する
// 主要通貨以外の残高ゼロ口座は削除せず非表示にする
func (s *Session) reconcileAccounts(accounts []model.Account) error {
	source := string(s.params.Exchange.Source())

	keep := make([]model.CurrencyType, 0, len(accounts))
	hidden := 0
	for i := range accounts {
		accounts[i].InstitutionID = s.institution.ID
		accounts[i].Hidden = accounts[i].IsZero() && !s.params.Policy.IsPrimary(accounts[i].Currency)
		if accounts[i].Hidden {
			hidden++
		}
		s.fillBTCValue(&accounts[i])
		keep = append(keep, accounts[i].Currency)
	}

	existing, err := s.params.AcctRepo.GetAccounts(s.institution.ID)
	if err != nil {
		return err
	}
	stale := 0
	for _, account := range existing {
		if !containsCurrency(keep, account.Currency) {
			stale++
		}
	}

	if err := s.params.AcctRepo.UpsertAccounts(accounts); err != nil {
		return err
	}
	if err := s.params.AcctRepo.DeleteAccountsExcept(s.institution.ID, keep); err != nil {
		return err
	}

	reconcileActionsTotal.WithLabelValues(source, "upsert").Add(float64(len(accounts)))
	reconcileActionsTotal.WithLabelValues(source, "hide").Add(float64(hidden))
	reconcileActionsTotal.WithLabelValues(source, "delete").Add(float64(stale))

	s.params.Logger.Debug("[sync] => reconciled accounts (institution: %d, upserted: %d, hidden: %d, deleted: %d)",
		s.institution.ID, len(accounts), hidden, stale)
	return nil
}

// fillBTCValue BTC換算額が未設定の口座をレートで補完
func (s *Session) fillBTCValue(account *model.Account) {
	if !account.BTCValue.IsZero() || account.IsZero() {
		return
	}

	if account.Currency == model.BTC {
		account.BTCValue = account.Total()
		return
	}

	if s.params.Rates == nil {
		return
	}

	if account.Currency == model.USDT {
		if rate, ok := s.params.Rates.GetRate(model.UsdtBtc); ok && !rate.IsZero() {
			account.BTCValue = account.Total().Div(rate)
		}
		return
	}

	if pair, ok := btcPair(account.Currency); ok {
		if rate, ok := s.params.Rates.GetRate(pair); ok {
			account.BTCValue = account.Total().Mul(rate)
		}
	}
}

// recordSnapshot 資産残高のスナップショットを記録
// USDT換算レートが無い場合はUSDT合計をゼロのまま記録する
func (s *Session) recordSnapshot(accounts []model.Account) error {
	btcTotal := decimal.Zero
	for i := range accounts {
		btcTotal = btcTotal.Add(accounts[i].BTCValue)
	}

	usdtTotal := decimal.Zero
	if s.params.Rates != nil {
		if rate, ok := s.params.Rates.GetRate(model.UsdtBtc); ok {
			usdtTotal = btcTotal.Mul(rate)
		} else {
			pair := model.UsdtBtc
			s.params.Logger.Debug("[sync] => skip usdt total (rate not found, pair: %s)", pair.String())
		}
	}

	return s.params.SnapRepo.AddSnapshot(&model.BalanceSnapshot{
		InstitutionID: s.institution.ID,
		BTCTotal:      btcTotal,
		USDTTotal:     usdtTotal,
		RecordedAt:    time.Now(),
	})
}

// transition 状態を遷移
func (s *Session) transition(to State) error {
	if !CanTransition(s.state, to) {
		return fmt.Errorf("invalid state transition, from: %s, to: %s", s.state, to)
	}
	s.state = to
	return nil
}

// fail 失敗状態へ移行
// 認証情報が不正な場合は金融機関に再連携フラグを立てる
func (s *Session) fail(err error) {
	s.state = Failed

	source := string(s.params.Exchange.Source())
	syncFailuresTotal.WithLabelValues(source, failureReason(err)).Inc()

	if errors.Is(err, model.ErrInvalidCredentials) && s.institution.ID != 0 {
		if uerr := s.params.InstRepo.UpdatePasswordInvalid(s.institution.ID, true); uerr != nil {
			s.params.Logger.Error("failed to update password invalid flag, institution: %d; error: %v", s.institution.ID, uerr)
		}
	}

	s.emit(model.EventSyncFailed, 0, 0, err)
}

// emit 同期イベントを通知
// 送信はノンブロッキング。受信側が追いつかない場合は破棄する
func (s *Session) emit(eventType model.SyncEventType, accounts, transactions int, err error) {
	if s.params.Events == nil {
		return
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	ev := model.SyncEvent{
		InstitutionID: s.institution.ID,
		Source:        s.params.Exchange.Source(),
		Type:          eventType,
		Accounts:      accounts,
		Transactions:  transactions,
		Err:           errMsg,
		OccurredAt:    time.Now(),
	}

	select {
	case s.params.Events <- ev:
	default:
		s.params.Logger.Debug("[sync] => event dropped (channel full, type: %s)", eventType)
	}
}
