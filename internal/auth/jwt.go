// File: internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenPair is what clients hold after OTP verification or a refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// GenerateTokenPair issues an access/refresh pair for the user. The "typ"
// claim keeps one kind of token from being replayed as the other.
func GenerateTokenPair(userID uint, secretKey []byte) (*TokenPair, error) {
	if userID == 0 {
		return nil, errors.New("user ID cannot be zero")
	}

	access, err := signToken(userID, typeAccess, accessTokenTTL, secretKey)
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(userID, typeRefresh, refreshTokenTTL, secretKey)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func signToken(userID uint, tokenType string, ttl time.Duration, secretKey []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": tokenType,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ValidateAccessToken checks the signature and returns the user id.
func ValidateAccessToken(tokenString string, secretKey []byte) (uint, error) {
	return validateToken(tokenString, typeAccess, secretKey)
}

// ValidateRefreshToken checks the signature and returns the user id.
func ValidateRefreshToken(tokenString string, secretKey []byte) (uint, error) {
	return validateToken(tokenString, typeRefresh, secretKey)
}

func validateToken(tokenString, wantType string, secretKey []byte) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return 0, ErrInvalidToken
	}
	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return uint(userIDFloat), nil
}
