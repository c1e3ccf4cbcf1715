package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

type TextMessage struct {
	Text string `json:"text"`
}

// NewSyncReport 同期イベントから通知メッセージを生成
// 完了と失敗のみ通知対象。それ以外はnilを返す
func NewSyncReport(ev *model.SyncEvent) *TextMessage {
	switch ev.Type {
	case model.EventSyncCompleted:
		return &TextMessage{
			Text: fmt.Sprintf("sync completed!!! `%s accounts:%d transactions:%d`", ev.Source, ev.Accounts, ev.Transactions),
		}
	case model.EventSyncFailed:
		return &TextMessage{
			Text: fmt.Sprintf("sync failed... `%s error:%s`", ev.Source, ev.Err),
		}
	default:
		return nil
	}
}

type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
	}
}

func (c *Client) PostMessage(messageObj interface{}) error {
	values, err := json.Marshal(messageObj)
	if err != nil {
		return err
	}

	res, err := http.Post(c.url, "application/json", bytes.NewBuffer(values))
	if err != nil {
		return err
	}

	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("slack response %d error: %s", res.StatusCode, body)
	}

	return nil
}
