package app

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"autofilter-bot/internal/pkg/jwtutil"
)

var ErrInvalidCredential = errors.New("invalid username or password")

// AuthService authenticates the single admin account for the HTTP API.
// Credentials live in configuration (username plus bcrypt hash), not in the
// database, because the API has exactly one operator identity.
type AuthService struct {
	username      string
	passwordHash  string
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(username, passwordHash, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		username:      username,
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Login(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", ErrInvalidInput
	}

	if username != s.username || s.passwordHash == "" {
		return "", ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredential
	}

	return jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, username)
}
