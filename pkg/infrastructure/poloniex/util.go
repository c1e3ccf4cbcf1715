package poloniex

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// signer リクエスト署名器
type signer struct {
	mu        sync.Mutex
	lastNonce int64
}

func newSigner() *signer {
	return &signer{}
}

// sign リクエスト本文の組み立てと署名計算
// 署名対象と送信する本文は同一のバイト列でなければならない
func (s *signer) sign(command string, params map[string]string, secret string) (reqBody, signature string) {
	values := url.Values{}
	values.Set("command", command)
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("nonce", strconv.FormatInt(s.createNonce(), 10))

	reqBody = values.Encode()
	signature = computeHmac512(reqBody, secret)
	return
}

// createNonce マイクロ秒時刻ベースのnonce生成
// 時計が巻き戻っても呼び出しごとに必ず増加する
func (s *signer) createNonce() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := time.Now().UnixNano() / (int64(time.Microsecond) / int64(time.Nanosecond))
	if nonce <= s.lastNonce {
		nonce = s.lastNonce + 1
	}
	s.lastNonce = nonce
	return nonce
}

func computeHmac512(payload, secret string) string {
	key := []byte(secret)
	h := hmac.New(sha512.New, key)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
