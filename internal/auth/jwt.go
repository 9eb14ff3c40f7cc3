// Package auth issues and verifies bearer tokens, hashes passwords, and
// provides the two-stage authentication middleware.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /auth/token (or /auth/register) with username + password
//  2. The credentials are checked against the bcrypt digest in the users table
//  3. The server returns a signed JWT carrying {username, isAdmin}
//  4. The client sends it back as "Authorization: Bearer <token>"
//  5. Identify (global) turns the header into an Identity in the request
//     context; RequireIdentity (per route group) rejects anonymous callers
//
// JWT STRUCTURE (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"alice","username":"alice","isAdmin":false,"iat":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
//
// Verification needs only the secret; no database lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "mealdb"

// ErrTokenInvalid covers every reason a token is rejected: empty, malformed,
// bad signature, wrong algorithm, wrong issuer, expired, no subject.
// Callers never need to tell these apart; they all mean "anonymous".
var ErrTokenInvalid = errors.New("auth: invalid token")

// Claims is what a token asserts about its bearer.
type Claims struct {
	Username string
	IsAdmin  bool
}

// TokenService signs and verifies HS256 tokens with one shared secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
//
// ttl bounds how long an issued token stays valid. A ttl of zero issues
// tokens without an "exp" claim, which then remain valid until the secret
// is rotated.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	if ttl < 0 {
		return nil, errors.New("auth: token ttl must not be negative")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// tokenClaims is the wire payload. "sub" duplicates the username so that
// standard tooling can read the bearer without knowing our private claims.
type tokenClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Issue signs a token for c.
func (s *TokenService) Issue(c Claims) (string, error) {
	return s.issueAt(c, time.Now(), s.ttl)
}

func (s *TokenService) issueAt(c Claims, now time.Time, ttl time.Duration) (string, error) {
	if c.Username == "" {
		return "", errors.New("auth: cannot issue a token without a username")
	}

	tc := tokenClaims{
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  c.Username,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
		},
	}
	if ttl != 0 {
		tc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a token string.
//
// ALGORITHM CONFUSION:
// Without pinning the algorithm, a token whose header says "none" (or an
// RSA algorithm keyed with our HMAC secret as a "public key") could pass.
// jwt.WithValidMethods refuses anything but HS256 before the key is used.
func (s *TokenService) Verify(tokenStr string) (Claims, error) {
	if tokenStr == "" {
		return Claims{}, ErrTokenInvalid
	}

	var tc tokenClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tc,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}

	if tc.Subject == "" || tc.Username != tc.Subject {
		return Claims{}, fmt.Errorf("%w: subject missing or inconsistent", ErrTokenInvalid)
	}

	return Claims{Username: tc.Username, IsAdmin: tc.IsAdmin}, nil
}
