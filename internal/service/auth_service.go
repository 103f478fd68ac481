package service

import (
	"errors"

	"tiketi/config"
	"tiketi/internal/auth"
	"tiketi/internal/models"
	"tiketi/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCreds = errors.New("invalid email or password")

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}
	token, err := auth.GenerateToken(&s.cfg.JWT, u.ID, u.Email, u.Role, u.PartnerID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
