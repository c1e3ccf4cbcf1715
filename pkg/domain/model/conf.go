package model

// Config 同期サーバー用設定
// 接続情報は環境変数から渡すため、ここには同期ポリシーのみを持つ
type Config struct {
	SyncIntervalSeconds int      `toml:"sync_interval_seconds"`
	RateTTLSeconds      int      `toml:"rate_ttl_seconds"`
	PrimaryCurrencies   []string `toml:"primary_currencies"`
	SnapshotLogPath     string   `toml:"snapshot_log_path"`
}

// Exchange 取引所向け設定
type Exchange struct {
	AccessKey  string `toml:"access_key"`
	SecretKey  string `toml:"secret_key"`
	Passphrase string `toml:"passphrase"`
}

// DB DB用設定
type DB struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	UserName string `toml:"user_name"`
	Password string `toml:"password"`
}

// LinkConfig 金融機関連携コマンド用設定
type LinkConfig struct {
	Source string `toml:"source"`
	Name   string `toml:"name"`
}
