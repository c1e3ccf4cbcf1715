package sync

import (
	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

// btcPair BTC建ての通貨ペアを取得
func btcPair(currency model.CurrencyType) (model.CurrencyPair, bool) {
	switch currency {
	case model.ETH:
		return model.BtcEth, true
	case model.XRP:
		return model.BtcXrp, true
	case model.LTC:
		return model.BtcLtc, true
	case model.XMR:
		return model.BtcXmr, true
	default:
		return model.CurrencyPair{}, false
	}
}

func containsCurrency(currencies []model.CurrencyType, currency model.CurrencyType) bool {
	for _, c := range currencies {
		if c == currency {
			return true
		}
	}
	return false
}
