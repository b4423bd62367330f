package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types embedded in claims so a refresh token cannot be used as an
// access token or vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type jwtCustomClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair carries a freshly issued access and refresh token. SessionID is
// the JWT ID of the refresh token and keys the server-side session record.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"-"`
}

// GenerateTokenPair creates a signed access/refresh token pair for the user.
func GenerateTokenPair(accessSecret, refreshSecret string, userID uuid.UUID, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	access, _, err := generateToken(accessSecret, userID, TokenTypeAccess, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, sessionID, err := generateToken(refreshSecret, userID, TokenTypeRefresh, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, SessionID: sessionID}, nil
}

func generateToken(secret string, userID uuid.UUID, tokenType string, ttl time.Duration) (signed, tokenID string, err error) {
	tokenID = uuid.NewString()
	claims := &jwtCustomClaims{
		UserID:    userID.String(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = token.SignedString([]byte(secret))
	return signed, tokenID, err
}

// ParseToken validates the token, checks its type, and returns the embedded
// user ID plus the token's JWT ID.
func ParseToken(secret, tokenString, wantType string) (userID uuid.UUID, tokenID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.TokenType != wantType {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", err
	}

	return userID, claims.ID, nil
}
