package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Google sign-in failures.
var (
	ErrInvalidGoogleToken = errors.New("invalid google token")
	ErrGoogleEmailMissing = errors.New("google token carries no email")
)

// GoogleClaims are the ID-token claims this service cares about.
type GoogleClaims struct {
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
	Exp           int64  `json:"exp"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleService validates Google ID tokens against the configured OAuth
// client ID and extracts the identity claims.
type GoogleService struct {
	clientID string
	now      func() time.Time
}

// NewGoogleService constructs a GoogleService.
func NewGoogleService(clientID string) *GoogleService {
	return &GoogleService{clientID: clientID, now: time.Now}
}

// VerifyIDToken checks issuer, audience, expiry, and the email_verified
// claim, returning the claims on success.
func (s *GoogleService) VerifyIDToken(idToken string) (*GoogleClaims, error) {
	claims, err := parseIDToken(idToken)
	if err != nil {
		return nil, err
	}

	if claims.Iss != "https://accounts.google.com" && claims.Iss != "accounts.google.com" {
		return nil, fmt.Errorf("%w: issuer %q", ErrInvalidGoogleToken, claims.Iss)
	}

	if claims.Aud != s.clientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidGoogleToken)
	}

	if claims.Exp < s.now().Unix() {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidGoogleToken)
	}

	if claims.Email == "" {
		return nil, ErrGoogleEmailMissing
	}

	if !claims.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified by google", ErrInvalidGoogleToken)
	}

	return claims, nil
}

func parseIDToken(token string) (*GoogleClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: not a JWT", ErrInvalidGoogleToken)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}

	var claims GoogleClaims
	if err := json.Unmarshal(decoded, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}

	return &claims, nil
}
