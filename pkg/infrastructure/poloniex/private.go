package poloniex

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
)

// returnCompleteBalances 全通貨の残高一覧
func (c *Client) returnCompleteBalances(ctx context.Context) ([]byte, error) {
	return c.post(ctx, "returnCompleteBalances", nil)
}

// returnDepositsWithdrawals 入出金履歴
func (c *Client) returnDepositsWithdrawals(ctx context.Context, start, end time.Time) ([]byte, error) {
	return c.post(ctx, "returnDepositsWithdrawals", map[string]string{
		"start": strconv.FormatInt(start.Unix(), 10),
		"end":   strconv.FormatInt(end.Unix(), 10),
	})
}

// post tradingApiへの署名付きPOST
// リトライはしない。失敗はそのまま呼び出し側へ返す
func (c *Client) post(ctx context.Context, command string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody, signature := c.signer.sign(command, params, c.APISecretKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin, strings.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request, command: %s; error: %w", command, err)
	}
	req.Header.Add("Key", c.APIAccessKey)
	req.Header.Add("Sign", signature)
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request, command: %s; error: %w", command, err)
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body, command: %s; error: %w", command, err)
	}

	if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w; command: %s, status: %d, body: %s", model.ErrInvalidCredentials, command, res.StatusCode, body)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("response is error, command: %s, status: %d, body: %s", command, res.StatusCode, body)
	}

	return body, nil
}
