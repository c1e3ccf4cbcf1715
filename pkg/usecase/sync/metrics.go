package sync

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

var (
	// syncRunsTotal 同期実行回数
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balance",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total number of sync runs",
		},
		[]string{"source", "result"},
	)

	// syncFailuresTotal 同期失敗回数（原因別）
	syncFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balance",
			Subsystem: "sync",
			Name:      "failures_total",
			Help:      "Total number of sync failures by reason",
		},
		[]string{"source", "reason"},
	)

	// syncRunDuration 同期1回あたりの所要時間
	syncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "balance",
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of one sync run in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	// reconcileActionsTotal 口座情報の突合処理の内訳
	reconcileActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balance",
			Subsystem: "sync",
			Name:      "reconcile_actions_total",
			Help:      "Total number of account reconciliation actions",
		},
		[]string{"source", "action"},
	)
)

// failureReason 失敗原因のメトリクス用ラベル
func failureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, model.ErrMalformedResponse):
		return "malformed_response"
	default:
		return "transport"
	}
}
