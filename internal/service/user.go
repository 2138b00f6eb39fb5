package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/config"
	"payhere-integration-demo/internal/model"
	"payhere-integration-demo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	VerifyToken(tokenString string) (string, error)
}

type userServiceImpl struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWT
}

func NewUserService(userRepo repository.UserRepository, jwtCfg config.JWT) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, email, password string) error {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return apperr.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.userRepo.Create(ctx, &model.User{
		Email:          email,
		HashedPassword: string(hashed),
	})
}

func (s *userServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.ErrBadCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", apperr.ErrBadCredentials
	}

	method := jwt.GetSigningMethod(s.jwtCfg.Algorithm)
	if method == nil {
		return "", fmt.Errorf("unknown jwt algorithm %q", s.jwtCfg.Algorithm)
	}

	claims := jwt.MapClaims{
		"sub": user.Email,
		"exp": time.Now().Add(time.Duration(s.jwtCfg.ExpireMinutes) * time.Minute).Unix(),
	}

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// VerifyToken validates a bearer token and returns the subject email.
func (s *userServiceImpl) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.jwtCfg.Algorithm {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", apperr.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.ErrUnauthorized
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperr.ErrUnauthorized
	}

	return sub, nil
}
