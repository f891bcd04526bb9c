package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Param is a single key/value request parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an insertion-ordered parameter list. Binance verifies the
// signature against the query string exactly as sent, so the encoding must
// preserve the order the parameters were added in; a map is not an option.
type Params []Param

// Encode canonicalizes the params into a URL-encoded query string,
// k=v pairs joined by '&' in insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Sign returns the hex HMAC-SHA256 of the encoded params under secret.
// Pure and deterministic: identical input always yields an identical tag.
func Sign(params Params, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(params.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}
