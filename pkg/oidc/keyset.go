package oidc

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"

	jose "github.com/go-jose/go-jose/v3"
)

const (
	KeyUseSignature = "sig"
)

var (
	ErrKeyMultiple = errors.New("multiple possible keys match")
	ErrKeyNone     = errors.New("no possible keys matches")
)

// KeySet represents a set of JSON Web Keys used to verify signatures.
type KeySet interface {
	// VerifySignature verifies the signature with the given keyset and returns the raw payload
	VerifySignature(ctx context.Context, jws *jose.JSONWebSignature) (payload []byte, err error)
}

// GetKeyIDAndAlg returns the `kid` and `alg` claim from the JWS header
func GetKeyIDAndAlg(jws *jose.JSONWebSignature) (string, string) {
	for _, sig := range jws.Signatures {
		return sig.Header.KeyID, sig.Header.Algorithm
	}
	return "", ""
}

// FindMatchingKey searches the given JSON Web Keys for the requested
// key ID, usage and alg type. An exact (id, use, alg) match is
// returned immediately, a single candidate without key ID is accepted,
// otherwise ErrKeyNone or ErrKeyMultiple is returned.
func FindMatchingKey(keyID, use, expectedAlg string, keys ...jose.JSONWebKey) (key jose.JSONWebKey, err error) {
	var validKeys []jose.JSONWebKey
	for _, k := range keys {
		if k.Use != use && k.Use != "" {
			continue
		}
		if !algToKeyType(k.Key, expectedAlg) {
			continue
		}
		if k.KeyID == keyID && keyID != "" {
			return k, nil
		}
		if k.KeyID == "" || keyID == "" {
			validKeys = append(validKeys, k)
		}
	}
	if len(validKeys) == 1 {
		return validKeys[0], nil
	}
	if len(validKeys) > 1 {
		return key, ErrKeyMultiple
	}
	return key, ErrKeyNone
}

func algToKeyType(key any, alg string) bool {
	if alg == "" {
		return false
	}
	switch alg[0] {
	case 'R', 'P':
		_, ok := key.(*rsa.PublicKey)
		return ok
	case 'E':
		switch alg {
		case string(jose.EdDSA):
			_, ok := key.(ed25519.PublicKey)
			return ok
		default:
			_, ok := key.(*ecdsa.PublicKey)
			return ok
		}
	default:
		return false
	}
}
