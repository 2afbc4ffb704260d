package payments

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Sign computes the gateway signature: HMAC-MD5 over the
// semicolon-joined fields, hex encoded. Field order matters.
func Sign(fields []string, secret string) string {
	mac := hmac.New(md5.New, []byte(secret))
	mac.Write([]byte(strings.Join(fields, ";")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares an incoming signature in constant time.
func VerifySignature(fields []string, secret, signature string) bool {
	expected := Sign(fields, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
