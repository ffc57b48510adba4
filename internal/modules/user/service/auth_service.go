package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/middleware"
	"github.com/garagedesk/garagedesk/internal/model"
	userDto "github.com/garagedesk/garagedesk/internal/modules/user/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/user/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

type AuthService interface {
	Register(ctx context.Context, req userDto.RegisterRequest) (*userDto.AuthResponse, error)
	Login(ctx context.Context, req userDto.LoginRequest) (*userDto.AuthResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	userRepo repo.UserRepository
	rdb      *redis.Client
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(userRepo repo.UserRepository, rdb *redis.Client, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo: userRepo,
		rdb:      rdb,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req userDto.RegisterRequest) (*userDto.AuthResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email is already registered: %w", apperror.ErrValidation)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &userDto.AuthResponse{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req userDto.LoginRequest) (*userDto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &userDto.AuthResponse{User: user, Token: token}, nil
}

// Logout puts the token id on the revocation list until the token would
// have expired anyway. Without redis logout is a client-side no-op.
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	return s.rdb.Set(ctx, middleware.RevocationKey(jti), "1", ttl).Err()
}

func (s *authService) issueToken(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
