package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/keychain"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/memory"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/mysql"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/poloniex"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/slack"
	"github.com/einsteinx2/balance-open/pkg/usecase"
	"github.com/einsteinx2/balance-open/pkg/usecase/log"
	"github.com/einsteinx2/balance-open/pkg/usecase/sync"
)

const (
	location = "Asia/Tokyo"
)

func init() {
	loc, err := time.LoadLocation(location)
	if err != nil {
		loc = time.FixedZone(location, 9*60*60)
	}
	time.Local = loc
}

func main() {
	logger := memory.Logger{Level: memory.Debug}

	logger.Info("===== START PROGRAM ====================")
	defer logger.Info("===== END PROGRAM ======================")

	f := flag.String("f", "", "config file path")
	flag.Parse()

	// .envは無くてもよい
	_ = godotenv.Load()

	var config ServerConfig
	if err := envconfig.Process("SYNC", &config); err != nil {
		logger.Error(err.Error())
		return
	}

	var conf model.Config
	if _, err := toml.DecodeFile(*f, &conf); err != nil {
		logger.Error("failed to load config, path: %s; error: %v", *f, err)
		return
	}

	logger.Info("sync interval: %d sec\n", conf.SyncIntervalSeconds)
	logger.Info("rate ttl: %d sec\n", conf.RateTTLSeconds)
	logger.Info("======================================")

	mysqlCli := mysql.NewClient(config.DB.UserName, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Name)
	slackCli := slack.NewClient(config.SlackURL)
	keychainCli, err := keychain.NewStore(config.KeychainPath, config.KeychainPassphrase)
	if err != nil {
		logger.Error("failed to open keychain; error: %v", err)
		return
	}
	rateCache := memory.NewRateCache(time.Duration(conf.RateTTLSeconds) * time.Second)

	institutions, err := mysqlCli.GetInstitutions()
	if err != nil {
		logger.Error("failed to load institutions; error: %v", err)
		return
	}
	logger.Info("institutions: %d\n", len(institutions))

	policy := sync.DefaultPolicy()
	if len(conf.PrimaryCurrencies) != 0 {
		policy.PrimaryCurrencies = nil
		for _, currency := range conf.PrimaryCurrencies {
			policy.PrimaryCurrencies = append(policy.PrimaryCurrencies, model.CurrencyType(currency))
		}
	}

	var snapshotLogger *usecase.SnapshotLogger
	if conf.SnapshotLogPath != "" {
		// 空ならCSV出力は無効
		snapshotLogger = usecase.NewSnapshotLogger(mysqlCli, conf.SnapshotLogPath)
	}

	events := make(chan model.SyncEvent, 32)

	rootCtx, cancel := context.WithCancel(context.Background())
	errGroup, ctx := errgroup.WithContext(rootCtx)

	workers := 0
	for i := range institutions {
		institution := &institutions[i]
		credentials, err := keychainCli.GetCredentials(institution.ID)
		if err != nil {
			logger.Error("skip institution (credentials not available, institution: %d); error: %v", institution.ID, err)
			continue
		}
		exCli, err := usecase.MakeExchangeClient(institution.Source, &logger, credentials)
		if err != nil {
			logger.Error("skip institution (institution: %d); error: %v", institution.ID, err)
			continue
		}
		syncer := sync.NewSyncer(&sync.Params{
			Logger:   &logger,
			Exchange: exCli,
			InstRepo: mysqlCli,
			AcctRepo: mysqlCli,
			TxRepo:   mysqlCli,
			SnapRepo: mysqlCli,
			Rates:    rateCache,
			Events:   events,
			Policy:   policy,
		})
		worker := usecase.NewSyncWorker(&logger, syncer, institution, &usecase.SyncWorkerConfig{
			IntervalSeconds: conf.SyncIntervalSeconds,
		})
		errGroup.Go(func() error {
			return worker.Run(ctx)
		})
		workers++
	}
	if workers == 0 {
		cancel()
		logger.Error("no institution is ready, link one first")
		return
	}

	// レート購読は公開APIのみ利用するため認証情報は不要
	watcher := usecase.NewRateWatcher(&logger, poloniex.NewClient(&logger, "", ""), rateCache)
	errGroup.Go(func() error {
		return watcher.Watch(ctx)
	})

	errGroup.Go(func() error {
		return consumeEvents(ctx, &logger, slackCli, snapshotLogger, events)
	})

	errGroup.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: config.MetricsAddr, Handler: mux}
		go func() {
			<-ctx.Done()
			server.Close()
		}()
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	errGroup.Go(func() error {
		defer cancel()
		return watchSignal(ctx, &logger)
	})

	if err := errGroup.Wait(); err != nil {
		logger.Error("error occured, %v", err)
	}
}

func watchSignal(ctx context.Context, logger *memory.Logger) error {
	// OSのシグナル監視
	quit := make(chan os.Signal)
	defer close(quit)
	signal.Notify(quit, os.Interrupt)
	select {
	case <-quit:
		logger.Info("terminating ...")
	case <-ctx.Done():
	}
	return nil
}

func consumeEvents(ctx context.Context, logger *memory.Logger, slackCli *slack.Client, snapshotLogger *usecase.SnapshotLogger, events <-chan model.SyncEvent) error {
	for {
		select {
		case ev := <-events:
			handleEvent(logger, slackCli, snapshotLogger, &ev)
		case <-ctx.Done():
			return nil
		}
	}
}

func handleEvent(logger *memory.Logger, slackCli *slack.Client, snapshotLogger *usecase.SnapshotLogger, ev *model.SyncEvent) {
	switch ev.Type {
	case model.EventSyncCompleted:
		logger.Info("[event] %s (institution: %d, accounts: %s, transactions: %s)", log.Green("%s", ev.Type), ev.InstitutionID, log.Yellow("%d", ev.Accounts), log.Yellow("%d", ev.Transactions))
		if snapshotLogger != nil {
			if err := snapshotLogger.AppendLog(ev.InstitutionID); err != nil {
				logger.Error("failed to append snapshot log, institution: %d; error: %v", ev.InstitutionID, err)
			}
		}
	case model.EventSyncFailed:
		logger.Error("[event] %s (institution: %d, error: %s)", log.Red("%s", ev.Type), ev.InstitutionID, ev.Err)
	default:
		logger.Debug("[event] %s (institution: %d)", ev.Type, ev.InstitutionID)
	}

	if message := slack.NewSyncReport(ev); message != nil {
		if err := slackCli.PostMessage(message); err != nil {
			logger.Error("%v", err)
		}
	}
}

type ServerConfig struct {
	// DB設定
	DB model.DB `required:"true" split_words:"true"`
	// SlackのIncomingWebhookのURL
	SlackURL string `required:"true" split_words:"true"`
	// 認証情報ストアのファイルパス
	KeychainPath string `required:"true" split_words:"true"`
	// 認証情報ストアのパスフレーズ
	KeychainPassphrase string `required:"true" split_words:"true"`
	// メトリクス公開用アドレス
	MetricsAddr string `required:"true" split_words:"true"`
}
