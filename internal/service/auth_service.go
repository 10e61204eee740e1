package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/preloved-backend/internal/logger"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}

var (
	errEmailTaken    = apperror.Conflict("email уже зарегистрирован")
	errPhoneTaken    = apperror.Conflict("телефон уже зарегистрирован")
	errInvalidTokens = apperror.New(apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	errWrongPassword = apperror.Validation([]apperror.FieldError{{Field: "current_password", Message: "неверный текущий пароль"}})
)

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
	bcryptCost   int
}

// SessionMeta сведения о клиенте, сохраняемые вместе с сессией.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User `json:"user"`
	TokenPair *TokenPair   `json:"tokens"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

// Register создаёт нового пользователя и открывает сессию.
func (s *AuthService) Register(ctx context.Context, req validation.RegisterRequest, meta SessionMeta) (*AuthResult, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, translate(err)
	}

	if req.Phone != nil && *req.Phone != "" {
		if _, err := s.repo.GetByPhone(ctx, *req.Phone); err == nil {
			return nil, errPhoneTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, translate(err)
		}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &models.User{
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(passHash),
		FullName:     req.FullName,
	}

	// Гонку двух регистраций разрешает ограничение уникальности.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translate(err)
	}

	tokens, err := s.openSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: tokens}, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, req validation.LoginRequest, meta SessionMeta) (*AuthResult, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, translate(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	tokens, err := s.openSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: tokens}, nil
}

// Refresh выпускает новую пару токенов, закрывая старую сессию.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta SessionMeta) (*TokenPair, error) {
	userID, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, errInvalidTokens
	}

	session, err := s.repo.GetSession(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, errInvalidTokens
		}
		return nil, translate(err)
	}
	if session.UserID != userID || time.Now().After(session.ExpiresAt) {
		return nil, errInvalidTokens
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errInvalidTokens
		}
		return nil, translate(err)
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	if err := s.repo.DeleteSession(ctx, refreshToken); err != nil {
		return nil, translate(err)
	}

	return s.openSession(ctx, user, meta)
}

// Logout удаляет сессию. Неизвестный токен не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repo.DeleteSession(ctx, refreshToken); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return translate(err)
	}
	return nil
}

// ChangePassword меняет пароль и закрывает все сессии пользователя.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req validation.ChangePasswordRequest) error {
	if err := validation.Validate(&req); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return translate(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return errWrongPassword
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(passHash)); err != nil {
		return translate(err)
	}
	return translate(s.repo.DeleteUserSessions(ctx, userID))
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, meta SessionMeta) (*TokenPair, error) {
	tokens, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    refreshExp,
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IP != "" {
		session.IPAddress = &meta.IP
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, translate(err)
	}
	return tokens, nil
}
