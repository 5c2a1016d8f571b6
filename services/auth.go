package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues and verifies the session tokens the API runs under.
// This is a single-user dashboard: anyone holding the access key can open a
// session for their email, and every query is scoped to that email.
type AuthService struct {
	jwtSecret []byte
	accessKey string
}

func NewAuthService(jwtSecret, accessKey string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		accessKey: accessKey,
	}
}

// Login checks the access key and returns a signed session token.
func (s *AuthService) Login(email, accessKey string) (string, error) {
	if email == "" {
		return "", errors.New("email is required")
	}
	if s.accessKey == "" || accessKey != s.accessKey {
		return "", errors.New("invalid access key")
	}
	return s.CreateJWT(email)
}

// CreateJWT generates a session token for a user.
func (s *AuthService) CreateJWT(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyJWT verifies a session token and returns the email it was issued to.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	email, ok := claims["email"].(string)
	if !ok {
		return "", errors.New("email claim missing")
	}

	return email, nil
}
