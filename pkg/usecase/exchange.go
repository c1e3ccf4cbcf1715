package usecase

import (
	"fmt"

	"github.com/einsteinx2/balance-open/pkg/domain"
	"github.com/einsteinx2/balance-open/pkg/domain/exchange"
	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/coinbase"
	"github.com/einsteinx2/balance-open/pkg/infrastructure/poloniex"
)

// MakeExchangeClient 取引所クライアントを生成
func MakeExchangeClient(source model.InstitutionSource, logger domain.Logger, creds *model.Credentials) (exchange.Client, error) {
	switch source {
	case model.SourcePoloniex:
		return poloniex.NewClient(logger, creds.APIKey, creds.Secret), nil
	case model.SourceCoinbase:
		return coinbase.NewClient(logger, creds.APIKey, creds.Secret, creds.Passphrase), nil
	default:
		return nil, fmt.Errorf("unknown institution source, value: %s", source)
	}
}
