// Package signer signs canonical JSON payloads for widgets that verify server
// issued configuration.
//
// Two schemes exist on purpose. HMAC is for the bundled widget that is built with
// the shared secret. ECDSA P-256 is for verifiers whose code is public and must only
// ever hold the public key. Never sign with HMAC for a verifier that cannot be
// trusted with the secret.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"talka.backend/pkg/canonical"
)

var (
	ErrMissingSecret      = errors.New("signer: secret is empty")
	ErrInvalidKeyLength   = errors.New("signer: private key must be 64 hex characters")
	ErrInvalidKeyEncoding = errors.New("signer: private key is not valid hex")
	ErrJWKConstruction    = errors.New("signer: failed to build JWK from private key")
	ErrSigning            = errors.New("signer: signing failed")

	errUnexpectedKeyType = errors.New("unexpected key type")
	errInvalidPublicKey  = errors.New("invalid public key")
	errInvalidPrivateKey = errors.New("invalid private key")
)

// SignHMAC returns hex(HMAC-SHA256(canonical(payload), secret)).
func SignHMAC(payload any, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	msg, err := canonical.Marshal(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyHMAC reports whether signatureHex is the HMAC signature of payload.
func VerifyHMAC(payload any, secret []byte, signatureHex string) bool {
	expected, err := SignHMAC(payload, secret)
	if err != nil {
		return false
	}
	if len(expected) != len(signatureHex) {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}

func wrap(kind error, err error) error {
	return fmt.Errorf("%w: %v", kind, err)
}
