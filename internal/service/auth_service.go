package service

import (
	"fmt"
	"log"
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/pkg/hash"
	"franchiseos-backend/pkg/jwt"
)

// AuthService handles dashboard admin login. There is one admin identity,
// configured via environment; the plaintext password is hashed once at
// construction and never held afterwards.
type AuthService struct {
	admin        domain.AdminUser
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewAuthService(email, password, jwtSecret string, tokenTTL time.Duration) (*AuthService, error) {
	passwordHash, err := hash.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("invalid admin password: %w", err)
	}

	return &AuthService{
		admin: domain.AdminUser{
			ID:    "admin",
			Email: email,
			Name:  "Administrator",
			Role:  "admin",
		},
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}, nil
}

func (s *AuthService) Login(req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Email != s.admin.Email {
		return nil, ErrInvalidCredentials
	}
	if err := hash.Compare(s.passwordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(s.admin.ID, s.tokenTTL, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[Auth] Admin login: %s", s.admin.Email)
	return &domain.LoginResponse{
		Token:     token,
		User:      s.admin,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

// Refresh issues a fresh token for a still-valid one.
func (s *AuthService) Refresh(tokenString string) (*domain.TokenResponse, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateRefreshToken(claims.UserID, s.tokenTTL, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.TokenResponse{
		Token:     token,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

// Validate resolves a bearer token to the admin identity.
func (s *AuthService) Validate(tokenString string) (*domain.AdminUser, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.UserID != s.admin.ID {
		return nil, ErrInvalidCredentials
	}
	admin := s.admin
	return &admin, nil
}
