package oidc

import (
	"crypto/sha256"
	"encoding/base64"
)

type CodeChallenge struct {
	Challenge string
	Method    CodeChallengeMethod
}

func NewSHACodeChallenge(code string) string {
	hash := sha256.Sum256([]byte(code))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func VerifyCodeChallenge(c *CodeChallenge, codeVerifier string) bool {
	if c == nil || codeVerifier == "" {
		return false
	}
	if c.Method == PKCEMethodS256 {
		codeVerifier = NewSHACodeChallenge(codeVerifier)
	}
	return codeVerifier == c.Challenge
}
