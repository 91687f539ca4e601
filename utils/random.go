package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateCode returns an uppercase hex string of nBytes random bytes. Used
// for record ids, gateway references and QR nonces.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// MustCode is GenerateCode for call sites where a failing system randomness
// source is not worth handling separately.
func MustCode(n int) string {
	code, err := GenerateCode(n)
	if err != nil {
		panic(err)
	}
	return code
}
