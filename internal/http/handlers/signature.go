package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature checks an HMAC-SHA256 webhook signature against the raw
// body. The header value may carry a "sha256=" prefix. Comparison is
// constant time. An empty signature or secret never verifies.
func VerifySignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	received := signature
	if idx := strings.Index(received, "sha256="); idx >= 0 {
		received = received[idx+len("sha256="):]
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(received))
}
