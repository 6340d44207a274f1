package ecommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// SignatureEncoding is how a platform encodes its HMAC-SHA256 digest
type SignatureEncoding int

const (
	// SignatureBase64 is standard base64 of the raw digest
	SignatureBase64 SignatureEncoding = iota
	// SignatureHex is lowercase hex of the raw digest
	SignatureHex
)

// Sign computes the HMAC-SHA256 signature of body in the given encoding
func Sign(body []byte, secret string, enc SignatureEncoding) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sum := mac.Sum(nil)
	if enc == SignatureHex {
		return hex.EncodeToString(sum)
	}
	return base64.StdEncoding.EncodeToString(sum)
}

// verifyHMAC compares signature against the expected digest in constant time
func verifyHMAC(body []byte, signature, secret string, enc SignatureEncoding) error {
	signature = strings.TrimSpace(signature)
	if signature == "" || secret == "" {
		return integration.ErrPlatformInvalidSignature
	}

	var got []byte
	var err error
	if enc == SignatureHex {
		// some platforms prefix the digest with the algorithm name
		signature = strings.TrimPrefix(strings.ToLower(signature), "sha256=")
		got, err = hex.DecodeString(signature)
	} else {
		got, err = base64.StdEncoding.DecodeString(signature)
	}
	if err != nil {
		return integration.ErrPlatformInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return integration.ErrPlatformInvalidSignature
	}
	return nil
}
