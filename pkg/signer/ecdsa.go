package signer

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"math/big"

	jose "github.com/go-jose/go-jose/v3"

	"talka.backend/pkg/canonical"
)

const rawKeyHexLen = 64

var randReader = rand.Reader

// SignECDSA signs canonical(payload) with ECDSA P-256 over SHA-256 and returns the
// base64 (standard alphabet) DER signature. rawPrivateKeyHex is the 32 byte private
// scalar in hex.
func SignECDSA(payload any, rawPrivateKeyHex string) (string, error) {
	jwk, err := privateJWK(rawPrivateKeyHex)
	if err != nil {
		return "", err
	}
	key, ok := jwk.Key.(*ecdsa.PrivateKey)
	if !ok {
		return "", wrap(ErrJWKConstruction, errUnexpectedKeyType)
	}

	msg, err := canonical.Marshal(payload)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(msg)

	sig, err := ecdsa.SignASN1(randReader, key, digest[:])
	if err != nil {
		return "", wrap(ErrSigning, err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyECDSA reports whether signatureB64 is a valid DER signature of
// canonical(payload) under pub.
func VerifyECDSA(payload any, pub *ecdsa.PublicKey, signatureB64 string) bool {
	if pub == nil {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	msg, err := canonical.Marshal(payload)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return ecdsa.VerifyASN1(pub, digest[:], sig)
}

// PublicJWK returns the public half of the signing key as a JWK, with the RFC 7638
// thumbprint as key id.
func PublicJWK(rawPrivateKeyHex string) (*jose.JSONWebKey, error) {
	jwk, err := privateJWK(rawPrivateKeyHex)
	if err != nil {
		return nil, err
	}
	pub := jwk.Public()
	if !pub.Valid() {
		return nil, wrap(ErrJWKConstruction, errInvalidPublicKey)
	}
	return &pub, nil
}

// privateJWK validates the raw scalar, derives the public point through ECDH
// scalar multiplication and assembles a JWK from d, x and y.
func privateJWK(rawPrivateKeyHex string) (*jose.JSONWebKey, error) {
	if len(rawPrivateKeyHex) != rawKeyHexLen {
		return nil, ErrInvalidKeyLength
	}
	d, err := hex.DecodeString(rawPrivateKeyHex)
	if err != nil {
		return nil, ErrInvalidKeyEncoding
	}

	ecdhKey, err := ecdh.P256().NewPrivateKey(d)
	if err != nil {
		return nil, wrap(ErrJWKConstruction, err)
	}
	// uncompressed point: 0x04 || X || Y
	point := ecdhKey.PublicKey().Bytes()
	x := new(big.Int).SetBytes(point[1:33])
	y := new(big.Int).SetBytes(point[33:65])

	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y},
		D:         new(big.Int).SetBytes(d),
	}

	jwk := jose.JSONWebKey{
		Key:       key,
		Algorithm: string(jose.ES256),
		Use:       "sig",
	}
	thumb, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, wrap(ErrJWKConstruction, err)
	}
	jwk.KeyID = base64.RawURLEncoding.EncodeToString(thumb)

	// Round trip through the JSON form so the key that signs is exactly the one a
	// JWK consumer would import.
	raw, err := json.Marshal(jwk)
	if err != nil {
		return nil, wrap(ErrJWKConstruction, err)
	}
	var parsed jose.JSONWebKey
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, wrap(ErrJWKConstruction, err)
	}
	if !parsed.Valid() || parsed.IsPublic() {
		return nil, wrap(ErrJWKConstruction, errInvalidPrivateKey)
	}
	return &parsed, nil
}
