package poloniex

import (
	"context"
	"fmt"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	tickerChannel    = 1002
	heartbeatChannel = 1010
	readWait         = 30 * time.Second
)

// tickerPairs Push APIの通貨ペアID
var tickerPairs = map[int64]model.CurrencyPair{
	50:  model.BtcLtc,
	114: model.BtcXmr,
	117: model.BtcXrp,
	121: model.UsdtBtc,
	123: model.UsdtLtc,
	148: model.BtcEth,
	149: model.UsdtEth,
}

// TickerHandler ティッカー受信ハンドラー
type TickerHandler func(pair model.CurrencyPair, last decimal.Decimal)

// SubscribeTicker Push APIのティッカー購読
// 切断時はエラーを返すため、再接続は呼び出し側で行う
func (c *Client) SubscribeTicker(ctx context.Context, handler TickerHandler) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, pushOrigin, nil)
	if err != nil {
		return fmt.Errorf("failed to connect push api, url: %s; error: %w", pushOrigin, err)
	}
	defer conn.Close()

	subscribe := map[string]interface{}{"command": "subscribe", "channel": tickerChannel}
	if err := conn.WriteJSON(subscribe); err != nil {
		return fmt.Errorf("failed to subscribe ticker channel; error: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			return err
		}

		var message []interface{}
		if err := conn.ReadJSON(&message); err != nil {
			return err
		}

		pair, last, ok := parseTickerMessage(message)
		if !ok {
			continue
		}
		handler(pair, last)
	}
}

// parseTickerMessage ティッカーメッセージの解析
// 形式: [チャンネルID, シーケンス, [ペアID, 最終値, 最良売値, 最良買値, ...]]
// ハートビート（1010）や未対応ペアは読み飛ばす
func parseTickerMessage(message []interface{}) (model.CurrencyPair, decimal.Decimal, bool) {
	if len(message) < 3 {
		return model.CurrencyPair{}, decimal.Zero, false
	}

	channel, ok := message[0].(float64)
	if !ok || int64(channel) != tickerChannel {
		return model.CurrencyPair{}, decimal.Zero, false
	}

	data, ok := message[2].([]interface{})
	if !ok || len(data) < 2 {
		return model.CurrencyPair{}, decimal.Zero, false
	}

	pairID, ok := data[0].(float64)
	if !ok {
		return model.CurrencyPair{}, decimal.Zero, false
	}
	pair, ok := tickerPairs[int64(pairID)]
	if !ok {
		return model.CurrencyPair{}, decimal.Zero, false
	}

	lastStr, ok := data[1].(string)
	if !ok {
		return model.CurrencyPair{}, decimal.Zero, false
	}
	last, err := decimal.NewFromString(lastStr)
	if err != nil {
		return model.CurrencyPair{}, decimal.Zero, false
	}

	return pair, last, true
}
