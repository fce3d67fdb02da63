// Package signature implements webhook authenticity checks for the payment
// gateway and the shipping carrier.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Payment computes the gateway notification signature:
// hex(sha512(orderID + statusCode + grossAmount + serverKey)).
func Payment(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifyPayment reports whether the provided signature matches the payload
// fields. Comparison is constant-time.
func VerifyPayment(orderID, statusCode, grossAmount, serverKey, provided string) bool {
	expected := Payment(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

// Carrier computes the shared-secret signature for carrier callbacks:
// hex(hmac-sha256(body, secret)).
func Carrier(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCarrier reports whether the provided signature matches the raw body.
func VerifyCarrier(body []byte, secret, provided string) bool {
	expected := Carrier(body, secret)
	return hmac.Equal([]byte(expected), []byte(provided))
}
