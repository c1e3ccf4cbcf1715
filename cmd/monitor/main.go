package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	talib "github.com/markcheno/go-talib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/memory"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/mysql"
)

// 資産推移の移動平均の期間
const smaPeriod = 12

type MonitorConfig struct {
	DB model.DB `required:"true" split_words:"true"`
}

func main() {
	logger := memory.Logger{Level: memory.Debug}
	logger.Info("===== START PROGRAM ====================")
	defer logger.Info("===== END PROGRAM ======================")

	var config MonitorConfig
	if err := envconfig.Process("", &config); err != nil {
		logger.Error(err.Error())
		return
	}

	mysqlCli := mysql.NewClient(config.DB.UserName, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Name)

	r := mux.NewRouter()
	r.HandleFunc("/api/institutions", institutionsHandler(mysqlCli)).Methods(http.MethodGet)
	r.HandleFunc("/api/institutions/{id:[0-9]+}/history", historyHandler(mysqlCli)).Methods(http.MethodGet).Queries("hours", "{hours:[0-9]+}")
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	http.Handle("/", r)
	if err := (http.ListenAndServe(":8080", nil)); err != nil {
		logger.Error("error occured: %v", err)
	}
}

func institutionsHandler(mysqlCli *mysql.Client) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err, ok := recover().(error); ok {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(struct {
					Error string `json:"error"`
				}{
					Error: err.Error(),
				})
			}
		}()
		w.Header().Set("Content-Type", "application/json")

		res := InstitutionsResponse{
			Institutions: []Institution{},
		}

		institutions, err := mysqlCli.GetInstitutions()
		if err != nil {
			panic(err)
		}
		for _, i := range institutions {
			accounts, err := mysqlCli.GetAccounts(i.ID)
			if err != nil {
				panic(err)
			}

			elem := Institution{
				ID:              i.ID,
				Source:          string(i.Source),
				Name:            i.Name,
				PasswordInvalid: i.PasswordInvalid,
				LastSyncedAt:    i.LastSyncedAt.Format(time.RFC3339),
				Accounts:        []Account{},
			}
			for _, a := range accounts {
				elem.Accounts = append(elem.Accounts, Account{
					Currency:  string(a.Currency),
					Type:      string(a.Type),
					Available: a.Available.String(),
					OnOrders:  a.OnOrders.String(),
					BTCValue:  a.BTCValue.String(),
					Hidden:    a.Hidden,
				})
			}
			res.Institutions = append(res.Institutions, elem)
		}

		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(res); err != nil {
			panic(err)
		}
	}
}

func historyHandler(mysqlCli *mysql.Client) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err, ok := recover().(error); ok {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(struct {
					Error string `json:"error"`
				}{
					Error: err.Error(),
				})
			}
		}()
		w.Header().Set("Content-Type", "application/json")

		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			panic(err)
		}
		hours, err := strconv.Atoi(r.URL.Query().Get("hours"))
		if err != nil {
			panic(err)
		}
		since := time.Now().Add(-time.Duration(hours) * time.Hour)

		res := HistoryResponse{
			Points:   []HistoryPoint{},
			Smoothed: []float64{},
		}

		snapshots, err := mysqlCli.GetSnapshots(uint(id), since)
		if err != nil {
			panic(err)
		}
		values := make([]float64, 0, len(snapshots))
		for _, s := range snapshots {
			btc, _ := s.BTCTotal.Float64()
			usdt, _ := s.USDTTotal.Float64()
			res.Points = append(res.Points, HistoryPoint{
				Datetime:  s.RecordedAt.Format(time.RFC3339),
				BTCTotal:  btc,
				USDTTotal: usdt,
			})
			values = append(values, btc)
		}
		if len(values) >= smaPeriod {
			res.Smoothed = talib.Sma(values, smaPeriod)
		}

		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(res); err != nil {
			panic(err)
		}
	}
}

type Account struct {
	Currency  string `json:"currency"`
	Type      string `json:"type"`
	Available string `json:"available"`
	OnOrders  string `json:"on_orders"`
	BTCValue  string `json:"btc_value"`
	Hidden    bool   `json:"hidden"`
}
type Institution struct {
	ID              uint      `json:"id"`
	Source          string    `json:"source"`
	Name            string    `json:"name"`
	PasswordInvalid bool      `json:"password_invalid"`
	LastSyncedAt    string    `json:"last_synced_at"`
	Accounts        []Account `json:"accounts"`
}
type InstitutionsResponse struct {
	Institutions []Institution `json:"institutions"`
}
type HistoryPoint struct {
	Datetime  string  `json:"datetime"`
	BTCTotal  float64 `json:"btc_total"`
	USDTTotal float64 `json:"usdt_total"`
}
type HistoryResponse struct {
	Points   []HistoryPoint `json:"points"`
	Smoothed []float64      `json:"smoothed"`
}
