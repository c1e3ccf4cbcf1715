package model

const (
	// SourcePoloniex Poloniex
	SourcePoloniex InstitutionSource = "poloniex"
	// SourceCoinbase Coinbase Pro
	SourceCoinbase InstitutionSource = "coinbase"
)

const (
	// BTC ビットコイン
	BTC CurrencyType = "BTC"
	// ETH イーサリアム
	ETH CurrencyType = "ETH"
	// USDT テザー
	USDT CurrencyType = "USDT"
	// XRP リップル
	XRP CurrencyType = "XRP"
	// LTC ライトコイン
	LTC CurrencyType = "LTC"
	// XMR モネロ
	XMR CurrencyType = "XMR"
)

var (
	// UsdtBtc BTC/USDT
	UsdtBtc CurrencyPair = CurrencyPair{Key: BTC, Settlement: USDT}
	// UsdtEth ETH/USDT
	UsdtEth CurrencyPair = CurrencyPair{Key: ETH, Settlement: USDT}
	// UsdtLtc LTC/USDT
	UsdtLtc CurrencyPair = CurrencyPair{Key: LTC, Settlement: USDT}
	// BtcEth ETH/BTC
	BtcEth CurrencyPair = CurrencyPair{Key: ETH, Settlement: BTC}
	// BtcXrp XRP/BTC
	BtcXrp CurrencyPair = CurrencyPair{Key: XRP, Settlement: BTC}
	// BtcLtc LTC/BTC
	BtcLtc CurrencyPair = CurrencyPair{Key: LTC, Settlement: BTC}
	// BtcXmr XMR/BTC
	BtcXmr CurrencyPair = CurrencyPair{Key: XMR, Settlement: BTC}
)

const (
	// ExchangeAccount 取引所口座
	ExchangeAccount AccountType = "exchange"
	// MarginAccount 証拠金口座
	MarginAccount AccountType = "margin"
	// LendingAccount 貸出口座
	LendingAccount AccountType = "lending"
)

const (
	// Deposit 入金
	Deposit TransactionCategory = "deposit"
	// Withdrawal 出金
	Withdrawal TransactionCategory = "withdrawal"
)

const (
	// EventAuthenticated 認証完了
	EventAuthenticated SyncEventType = "authenticated"
	// EventBalancesSynced 残高同期完了
	EventBalancesSynced SyncEventType = "balances_synced"
	// EventTransactionsSynced 入出金履歴同期完了
	EventTransactionsSynced SyncEventType = "transactions_synced"
	// EventSyncCompleted 同期完了
	EventSyncCompleted SyncEventType = "sync_completed"
	// EventSyncFailed 同期失敗
	EventSyncFailed SyncEventType = "sync_failed"
)
