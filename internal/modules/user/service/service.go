package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	dashboard "github.com/acadialab/appointbook/internal/modules/dashboard/service"
	profileService "github.com/acadialab/appointbook/internal/modules/profile/service"
	"github.com/acadialab/appointbook/internal/modules/user/dto"
	"github.com/acadialab/appointbook/internal/modules/user/repository"
	"github.com/acadialab/appointbook/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/acadialab/appointbook/internal/entity"
)

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Register(ctx context.Context, input dto.RegisterInput) (*dto.RegisterResponse, error)
	VerifyToken(token string) (string, error)
}

type authService struct {
	accounts repository.AccountRepository
	profiles profileService.ProfileService
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(accounts repository.AccountRepository, profiles profileService.ProfileService) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := time.Hour
	if ttlStr := os.Getenv("JWT_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil {
			ttl = parsed
		}
	}

	return &authService{
		accounts: accounts,
		profiles: profiles,
		secret:   secret,
		tokenTTL: ttl,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	account, err := s.accounts.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	profile, err := s.profiles.FetchProfile(ctx, account.UID.String())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// A session without a profile is invalid: no token is issued,
			// which is the server-side form of the forced sign-out.
			return nil, apperror.ErrProfileMissing
		}
		return nil, err
	}

	token, err := s.issueToken(account.UID.String())
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		Profile:     profile,
		State:       string(dashboard.RouteProfile(profile)),
	}, nil
}

// Register creates the identity-provider account and the pending student
// profile, then leaves the caller signed out: a student cannot hold a session
// until an admin approves the registration.
func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.RegisterResponse, error) {
	if _, err := s.accounts.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.ErrEmailInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &entity.Account{
		Email:        input.Email,
		PasswordHash: string(hashed),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrEmailInUse
		}
		return nil, err
	}

	profile, err := s.profiles.RegisterStudent(ctx, account.UID.String(), input.Name, input.Email)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		Profile:   profile,
		SignedOut: true,
	}, nil
}

func (s *authService) issueToken(uid string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken resolves a session token to the identity subject.
func (s *authService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return "", apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperror.ErrUnauthorized
	}

	return claims.Subject, nil
}
