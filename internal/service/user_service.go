package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// UserRepository хранилище пользователей и подписок.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone, avatarURL, bio, location, postalCode *string) (*models.User, error)
	Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSummary, error)
}

// SellerRatings источник агрегированной оценки продавца.
type SellerRatings interface {
	SellerRating(ctx context.Context, sellerID uuid.UUID) (*models.RatingSummary, error)
}

// ProductLister выборка объявлений каталога.
type ProductLister interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.ProductListItem, error)
}

var errSelfFollow = apperror.Conflict("нельзя подписаться на себя")

// FollowResult состояние подписки после операции.
type FollowResult struct {
	UserID      uuid.UUID `json:"user_id"`
	IsFollowing bool      `json:"is_following"`
}

// UserService профили и подписки.
type UserService struct {
	users    UserRepository
	ratings  SellerRatings
	products ProductLister
}

func NewUserService(users UserRepository, ratings SellerRatings, products ProductLister) *UserService {
	return &UserService{users: users, ratings: ratings, products: products}
}

// Me возвращает полную запись текущего пользователя.
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	return user, translate(err)
}

// UpdateProfile меняет переданные поля профиля.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req validation.UpdateProfileRequest) (*models.User, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateProfile(ctx, userID, req.FullName, req.Phone, req.AvatarURL, req.Bio, req.Location, req.PostalCode)
	return user, translate(err)
}

// PublicProfile возвращает публичный профиль с рейтингом. viewerID может быть nil.
func (s *UserService) PublicProfile(ctx context.Context, userID uuid.UUID, viewerID *uuid.UUID) (*models.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	if !user.IsActive {
		return nil, apperror.ErrUserNotFound
	}

	profile := user.Public()
	rating, err := s.ratings.SellerRating(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	profile.AverageRating = rating.AverageRating
	profile.ReviewCount = rating.ReviewCount

	if viewerID != nil && *viewerID != userID {
		following, err := s.users.IsFollowing(ctx, *viewerID, userID)
		if err != nil {
			return nil, translate(err)
		}
		profile.IsFollowing = following
	}
	return &profile, nil
}

// ListListings возвращает одобренные объявления пользователя.
func (s *UserService) ListListings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ProductListItem, error) {
	items, err := s.products.List(ctx, models.ProductFilter{
		SellerID: &userID,
		Statuses: []string{models.ProductStatusApproved},
		Sort:     models.SortNewest,
		Limit:    limit,
		Offset:   offset,
	})
	return items, translate(err)
}

// Follow подписывает followerID на targetID. Повторная подписка ничего не меняет.
func (s *UserService) Follow(ctx context.Context, followerID, targetID uuid.UUID) (*FollowResult, error) {
	if followerID == targetID {
		return nil, errSelfFollow
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, translate(err)
	}
	if _, err := s.users.Follow(ctx, followerID, targetID); err != nil {
		return nil, translate(err)
	}
	return &FollowResult{UserID: targetID, IsFollowing: true}, nil
}

// Unfollow снимает подписку. Отсутствующая подписка не ошибка.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) (*FollowResult, error) {
	if followerID == targetID {
		return nil, errSelfFollow
	}
	if _, err := s.users.Unfollow(ctx, followerID, targetID); err != nil {
		return nil, translate(err)
	}
	return &FollowResult{UserID: targetID, IsFollowing: false}, nil
}

func (s *UserService) Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSummary, error) {
	users, err := s.users.ListFollowers(ctx, userID, limit, offset)
	return users, translate(err)
}

func (s *UserService) Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSummary, error) {
	users, err := s.users.ListFollowing(ctx, userID, limit, offset)
	return users, translate(err)
}
