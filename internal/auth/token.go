package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type tokenClaims struct {
	UserID    string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

// TokenIssuer signs and verifies bearer tokens. Tokens are a base64 JSON
// claims blob plus an HMAC-SHA256 signature, joined by a dot.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue creates a token for userID expiring TokenTTL from now.
func (ti *TokenIssuer) Issue(userID string) (string, error) {
	claims := tokenClaims{
		UserID:    userID,
		ExpiresAt: ti.now().Add(TokenTTL).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encoding token claims: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + ti.sign(encoded), nil
}

// Verify checks the signature and expiry and returns the user ID.
func (ti *TokenIssuer) Verify(token string) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(ti.sign(encoded)), []byte(sig)) {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}
	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	if ti.now().Unix() >= claims.ExpiresAt {
		return "", ErrTokenExpired
	}
	return claims.UserID, nil
}

func (ti *TokenIssuer) sign(encoded string) string {
	mac := hmac.New(sha256.New, ti.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
