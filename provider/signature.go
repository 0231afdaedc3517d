package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature calculates the HMAC-SHA256 of payload with the given
// secret, hex encoded. This is the signature scheme shared by the webhook
// integrations in this module.
func ComputeSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureEqual compares two signatures in constant time
func SignatureEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
