package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/keychain"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/memory"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/mysql"
	"github.com/einsteinx2/balance-open/pkg/usecase"
	"github.com/einsteinx2/balance-open/pkg/usecase/sync"
)

// LinkerConfig 連携コマンドの接続設定
type LinkerConfig struct {
	// 取引所設定
	Exchange model.Exchange `required:"true" split_words:"true"`
	// DB設定
	DB model.DB `required:"true" split_words:"true"`
	// 認証情報ストアのファイルパス
	KeychainPath string `required:"true" split_words:"true"`
	// 認証情報ストアのパスフレーズ
	KeychainPassphrase string `required:"true" split_words:"true"`
}

func main() {
	log.Println("===== START PROGRAM ====================")
	defer log.Println("===== END PROGRAM ======================")

	f := flag.String("f", "", "config file path")
	flag.Parse()
	log.Printf("config file: %s\n", *f)

	// .envは無くてもよい
	_ = godotenv.Load()

	var conf model.LinkConfig
	if _, err := toml.DecodeFile(*f, &conf); err != nil {
		log.Fatal(err.Error())
	}

	var config LinkerConfig
	if err := envconfig.Process("LINK", &config); err != nil {
		log.Fatal(err.Error())
	}

	logger := memory.Logger{Level: memory.Info}

	credentials := &model.Credentials{
		APIKey:     config.Exchange.AccessKey,
		Secret:     config.Exchange.SecretKey,
		Passphrase: config.Exchange.Passphrase,
	}
	source, err := model.ParseToInstitutionSource(conf.Source)
	if err != nil {
		log.Fatal(err.Error())
	}
	exCli, err := usecase.MakeExchangeClient(source, &logger, credentials)
	if err != nil {
		log.Fatal(err.Error())
	}

	mysqlCli := mysql.NewClient(config.DB.UserName, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Name)
	keychainCli, err := keychain.NewStore(config.KeychainPath, config.KeychainPassphrase)
	if err != nil {
		log.Fatal(err.Error())
	}

	syncer := sync.NewSyncer(&sync.Params{
		Logger:   &logger,
		Exchange: exCli,
		InstRepo: mysqlCli,
		AcctRepo: mysqlCli,
		TxRepo:   mysqlCli,
		SnapRepo: mysqlCli,
		Policy:   sync.DefaultPolicy(),
	})

	// 名前の指定が無ければ取引所の表示名が使われる
	var institution *model.Institution
	if conf.Name != "" {
		institution = &model.Institution{
			Source: source,
			Name:   conf.Name,
		}
	}

	log.Printf("source: %s\n", conf.Source)
	log.Println("======================================")

	sess, err := syncer.Run(context.Background(), institution)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			log.Fatalf("credentials are rejected, source: %s; error: %v", conf.Source, err)
		}
		log.Fatalf("failed to link institution, source: %s; error: %v", conf.Source, err)
	}

	if err := keychainCli.SetCredentials(sess.Institution().ID, credentials); err != nil {
		log.Fatalf("failed to store credentials, institution: %d; error: %v", sess.Institution().ID, err)
	}

	log.Printf("institution: %d (%s)\n", sess.Institution().ID, sess.Institution().Name)
	log.Println("linked!!!")
}
