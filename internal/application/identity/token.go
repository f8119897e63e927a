package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"lorryadmin/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken returns an opaque random token for password resets.
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "lra_" + hex.EncodeToString(bytes), nil
}

func issueAccessToken(user *domain.User, secret []byte, expiry time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, domain.ErrInvalidToken
}

// federatedClaims extracts the account identity from a federated ID token.
func federatedClaims(tokenString string, secret []byte) (subject, email string, err error) {
	claims, err := ValidateToken(tokenString, secret)
	if err != nil {
		return "", "", err
	}

	subject, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	if subject == "" || email == "" {
		return "", "", errors.New("federated token missing sub or email")
	}
	return subject, email, nil
}
