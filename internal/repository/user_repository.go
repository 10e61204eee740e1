package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
)

var (
	// ErrUserNotFound возвращается, когда запись пользователя не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound возвращается, когда сессия не найдена или истекла.
	ErrSessionNotFound = errors.New("session not found")
)

const userColumns = `id, email, phone, password_hash, full_name, avatar_url, bio, location, postal_code,
	is_admin, is_active, is_verified, followers_count, following_count, listings_count, sales_count,
	last_login_at, created_at, updated_at`

// UserRepository отвечает за работу с таблицами users, user_sessions и follows.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, phone, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_admin, is_active, is_verified, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.Phone, user.PasswordHash, user.FullName,
	).Scan(&user.ID, &user.IsAdmin, &user.IsActive, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetByPhone возвращает пользователя по телефону.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getOne(ctx, "phone", phone)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *UserRepository) getOne(ctx context.Context, field string, value interface{}) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, field)

	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by %s %w", field, err)
	}

	return &user, nil
}

// UpdateProfile обновляет переданные поля профиля; nil оставляет значение без изменений.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone, avatarURL, bio, location, postalCode *string) (*models.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET full_name = COALESCE($2, full_name),
			phone = COALESCE($3, phone),
			avatar_url = COALESCE($4, avatar_url),
			bio = COALESCE($5, bio),
			location = COALESCE($6, location),
			postal_code = COALESCE($7, postal_code),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, fullName, phone, avatarURL, bio, location, postalCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: update profile %w", err)
	}

	return &user, nil
}

// UpdatePassword сохраняет новый хеш пароля.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("user repository: update password %w", err)
	}
	return common.ExpectAffected(result, ErrUserNotFound)
}

// UpdateLastLoginAt обновляет время последнего входа пользователя.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}
	return nil
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// GetSession возвращает действующую сессию по refresh токену.
func (r *UserRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE refresh_token = $1 AND expires_at > NOW()
	`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}
	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// DeleteUserSessions завершает все сессии пользователя.
func (r *UserRepository) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: delete user sessions %w", err)
	}
	return nil
}

// Follow создаёт подписку и обновляет счётчики обеих сторон в одной транзакции.
// Возвращает false, если подписка уже существовала.
func (r *UserRepository) Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	created := false
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO follows (follower_id, following_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, followerID, followingID)
		if err != nil {
			return fmt.Errorf("user repository: follow insert %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil
		}
		created = true
		return adjustFollowCounters(ctx, tx, followerID, followingID, 1)
	})
	return created, err
}

// Unfollow удаляет подписку и уменьшает счётчики в одной транзакции.
func (r *UserRepository) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	removed := false
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
		if err != nil {
			return fmt.Errorf("user repository: unfollow delete %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil
		}
		removed = true
		return adjustFollowCounters(ctx, tx, followerID, followingID, -1)
	})
	return removed, err
}

func adjustFollowCounters(ctx context.Context, tx *sqlx.Tx, followerID, followingID uuid.UUID, delta int) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET following_count = GREATEST(following_count + $2, 0) WHERE id = $1`,
		followerID, delta,
	); err != nil {
		return fmt.Errorf("user repository: following counter %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET followers_count = GREATEST(followers_count + $2, 0) WHERE id = $1`,
		followingID, delta,
	); err != nil {
		return fmt.Errorf("user repository: followers counter %w", err)
	}
	return nil
}

// IsFollowing проверяет наличие подписки.
func (r *UserRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, followerID, followingID); err != nil {
		return false, fmt.Errorf("user repository: is following %w", err)
	}
	return exists, nil
}

// ListFollowers возвращает подписчиков пользователя.
func (r *UserRepository) ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.full_name, u.avatar_url, u.is_verified
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.selectSummaries(ctx, "list followers", query, userID, limit, offset)
}

// ListFollowing возвращает пользователей, на которых подписан пользователь.
func (r *UserRepository) ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.full_name, u.avatar_url, u.is_verified
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.selectSummaries(ctx, "list following", query, userID, limit, offset)
}

func (r *UserRepository) selectSummaries(ctx context.Context, op, query string, args ...interface{}) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("user repository: %s %w", op, err)
	}
	return users, nil
}

// List возвращает пользователей для админки с фильтрами.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE 1=1`, userColumns)
	args := []interface{}{}
	argIndex := 1

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, *filter.IsActive)
		argIndex++
	}
	if filter.IsAdmin != nil {
		query += fmt.Sprintf(" AND is_admin = $%d", argIndex)
		args = append(args, *filter.IsAdmin)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}
	return users, nil
}

// SetActive включает или блокирует аккаунт.
func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("user repository: set active %w", err)
	}
	return common.ExpectAffected(result, ErrUserNotFound)
}

// SetVerified отмечает аккаунт как проверенный.
func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_verified = $2, updated_at = NOW() WHERE id = $1`, id, verified)
	if err != nil {
		return fmt.Errorf("user repository: set verified %w", err)
	}
	return common.ExpectAffected(result, ErrUserNotFound)
}
