// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/martin-karani/subscription-manager-api/internal/lib/errs"
	"github.com/martin-karani/subscription-manager-api/internal/lib/jwt"
	"github.com/martin-karani/subscription-manager-api/internal/lib/password"
	"github.com/martin-karani/subscription-manager-api/internal/models"
	"github.com/martin-karani/subscription-manager-api/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает созданную запись.
	CreateUser(ctx context.Context, username, email, passwordHash string, isAdmin bool) (*models.User, error)
	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, userID int) (*models.User, error)
}

// AuthService отвечает за регистрацию, вход и обновление токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля. Признак
// администратора через регистрацию не выдаётся: учётные записи
// администраторов создаются только напрямую.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, req.Username, req.Email, hashed, false)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errs.Conflict("Username or email already exists.")
		}
		return nil, err
	}

	s.log.Info("registered new user", slog.Int("id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Login проверяет пароль пользователя и выдаёт пару токенов: access и refresh.
// Неизвестное имя и неверный пароль неразличимы в ответе.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, errs.Unauthorized("Invalid username or password.")
		}
		return nil, nil, err
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, nil, errs.Unauthorized("Invalid username or password.")
	}

	access, err := s.jwtMaker.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user logged in", slog.Int("id", user.ID), slog.String("username", user.Username))
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

// Refresh проверяет refresh-токен и выдаёт новый access-токен. Признак
// администратора перечитывается из хранилища, а не из старых claims.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return "", errs.Unauthorized("Invalid or expired refresh token.")
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return "", errs.Unauthorized("Refresh token required.")
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errs.Unauthorized("User not found or inactive.")
		}
		return "", err
	}

	access, err := s.jwtMaker.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return "", err
	}

	s.log.Info("access token refreshed", slog.Int("id", user.ID))
	return access, nil
}

// Profile возвращает профиль пользователя по ID из токена.
func (s *AuthService) Profile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("User with ID %d not found.", userID)
		}
		return nil, err
	}
	return user, nil
}
