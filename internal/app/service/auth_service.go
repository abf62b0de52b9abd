package service

import (
	"errors"

	"github.com/rayshop/shopmap-backend/config"
	"github.com/rayshop/shopmap-backend/internal/app/model"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/rayshop/shopmap-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

type AuthService interface {
	Register(email, password, name string, role model.UserRole) (*model.User, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	Refresh(refreshToken string) (*util.TokenPair, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   *config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg *config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *authService) Register(email, password, name string, role model.UserRole) (*model.User, error) {
	logger.Info("Registering user", map[string]interface{}{
		"email": email,
		"role":  role,
	})

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, pair, nil
}

func (s *authService) Refresh(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtCfg.Secret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.tokens(user)
}

func (s *authService) tokens(user *model.User) (*util.TokenPair, error) {
	shopID := ""
	if user.ShopID != nil {
		shopID = *user.ShopID
	}
	return util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role), shopID,
		s.jwtCfg.Secret, s.jwtCfg.AccessTokenExpiry, s.jwtCfg.RefreshTokenExpiry,
	)
}
