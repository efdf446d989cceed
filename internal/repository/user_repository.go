package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "likeboard/internal/errors"
	"likeboard/internal/model"
)

// Hasher turns a plaintext password into a one-way hash.
type Hasher interface {
	Hash(plain string) (string, error)
}

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, username, password string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateLikes(ctx context.Context, id string, likes model.Likes) error
	UpdatePassword(ctx context.Context, id, password string) error
}

type userRepository struct {
	db     *gorm.DB
	hasher Hasher
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB, hasher Hasher) UserRepository {
	return &userRepository{db: db, hasher: hasher}
}

// Create stores a new user with a hashed password and no likes.
func (r *userRepository) Create(ctx context.Context, username, password string) (*model.User, error) {
	existing, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrUserExists
	}

	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Likes:        model.Likes{},
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// lost a race with a concurrent signup for the same name
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FindByID resolves id, treating malformed ids as not found.
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}

	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", parsed.String()).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByUsername returns nil without error when no user has that name.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateLikes replaces the whole likes column of one row.
func (r *userRepository) UpdateLikes(ctx context.Context, id string, likes model.Likes) error {
	if likes == nil {
		likes = model.Likes{}
	}
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("likes", likes).Error
	if err != nil {
		return fmt.Errorf("update likes: %w", err)
	}
	return nil
}

// UpdatePassword re-hashes password and replaces the stored hash.
func (r *userRepository) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
