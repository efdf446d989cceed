package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"likeboard/internal/cache"
	apperrors "likeboard/internal/errors"
	"likeboard/internal/model"
	"likeboard/internal/repository"
)

const (
	defaultUserCacheTTL  = 5 * time.Minute
	defaultBoardCacheTTL = 30 * time.Second
	mostLikedCacheKey    = "users:most-liked"
)

// TokenIssuer mints bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(hash, plain string) bool
}

// UpdateLikesInput describes a like or unlike of UserID by LikerID.
type UpdateLikesInput struct {
	LikerID string
	UserID  string
	Like    bool
}

// UpdatePasswordInput describes a password change for UserID.
type UpdatePasswordInput struct {
	UserID   string
	Password string
}

// UserService exposes account and like operations.
type UserService interface {
	Signup(ctx context.Context, username, password string) (*model.UserAuth, error)
	Login(ctx context.Context, username, password string) (*model.UserAuth, error)
	GetUser(ctx context.Context, id string) (*model.UserPublic, error)
	UpdateLikes(ctx context.Context, in UpdateLikesInput) error
	UpdatePassword(ctx context.Context, in UpdatePasswordInput) error
	GetMostLikedUsers(ctx context.Context) ([]model.UserPublic, error)
}

// Options tunes cache lifetimes. Zero values use the defaults.
type Options struct {
	UserCacheTTL  time.Duration
	BoardCacheTTL time.Duration
}

type userService struct {
	repo     repository.UserRepository
	tokens   TokenIssuer
	verifier PasswordVerifier
	cache    *cache.Client
	log      *logrus.Logger
	userTTL  time.Duration
	boardTTL time.Duration
}

// NewUserService builds a UserService. cache may be nil.
func NewUserService(
	repo repository.UserRepository,
	tokens TokenIssuer,
	verifier PasswordVerifier,
	cache *cache.Client,
	log *logrus.Logger,
	opts Options,
) UserService {
	if opts.UserCacheTTL == 0 {
		opts.UserCacheTTL = defaultUserCacheTTL
	}
	if opts.BoardCacheTTL == 0 {
		opts.BoardCacheTTL = defaultBoardCacheTTL
	}
	return &userService{
		repo:     repo,
		tokens:   tokens,
		verifier: verifier,
		cache:    cache,
		log:      log,
		userTTL:  opts.UserCacheTTL,
		boardTTL: opts.BoardCacheTTL,
	}
}

// cacheKey normalizes id so differently cased spellings share one entry.
func (s *userService) cacheKey(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	}
	return fmt.Sprintf("user:%s", id)
}

// Signup creates the account and returns it with a fresh token.
func (s *userService) Signup(ctx context.Context, username, password string) (*model.UserAuth, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	user, err := s.repo.Create(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	_ = s.cache.Delete(ctx, mostLikedCacheKey)

	s.log.WithFields(logrus.Fields{"user_id": user.ID.String(), "username": user.Username}).Info("user signed up")
	return s.authFor(user)
}

// Login checks the password and returns a newly issued token.
func (s *userService) Login(ctx context.Context, username, password string) (*model.UserAuth, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if !s.verifier.Compare(user.PasswordHash, password) {
		return nil, apperrors.ErrPasswordMismatch
	}

	return s.authFor(user)
}

// GetUser returns the public projection of the user, served from cache when possible.
func (s *userService) GetUser(ctx context.Context, id string) (*model.UserPublic, error) {
	var cached model.UserPublic
	if cache.GetJSON(ctx, s.cache, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pub := model.ToPublic(user)
	cache.SetJSON(ctx, s.cache, s.cacheKey(id), pub, s.userTTL)
	return &pub, nil
}

// UpdateLikes adds or removes the liker on the target user. Re-adding or
// re-removing is a no-op.
//
// The read and the write are separate statements, so two concurrent likes on
// the same user can lose one update.
func (s *userService) UpdateLikes(ctx context.Context, in UpdateLikesInput) error {
	user, err := s.repo.FindByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	likes := append(model.Likes(nil), user.Likes...)
	var changed bool
	if in.Like {
		changed = likes.Add(in.LikerID)
	} else {
		changed = likes.Remove(in.LikerID)
	}
	if !changed {
		return nil
	}

	if err := s.repo.UpdateLikes(ctx, user.ID.String(), likes); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID.String()), mostLikedCacheKey)

	s.log.WithFields(logrus.Fields{
		"liker_id": in.LikerID,
		"user_id":  user.ID.String(),
		"like":     in.Like,
		"likes":    likes.Len(),
	}).Debug("likes updated")
	return nil
}

// UpdatePassword replaces the password of an already authenticated user.
func (s *userService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	if in.Password == "" {
		return apperrors.ErrMissingPassword
	}

	user, err := s.repo.FindByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID.String(), in.Password); err != nil {
		return err
	}

	s.log.WithField("user_id", user.ID.String()).Info("password updated")
	return nil
}

// GetMostLikedUsers lists every user, most liked first. Equal counts are
// ordered by username.
func (s *userService) GetMostLikedUsers(ctx context.Context) ([]model.UserPublic, error) {
	var cached []model.UserPublic
	if cache.GetJSON(ctx, s.cache, mostLikedCacheKey, &cached) {
		return cached, nil
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	board := make([]model.UserPublic, 0, len(users))
	for i := range users {
		board = append(board, model.ToPublic(&users[i]))
	}
	sort.SliceStable(board, func(i, j int) bool {
		if board[i].Likes != board[j].Likes {
			return board[i].Likes > board[j].Likes
		}
		return board[i].Username < board[j].Username
	})

	cache.SetJSON(ctx, s.cache, mostLikedCacheKey, board, s.boardTTL)
	return board, nil
}

func (s *userService) authFor(user *model.User) (*model.UserAuth, error) {
	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.UserAuth{
		ID:       user.ID.String(),
		Username: user.Username,
		Token:    token,
	}, nil
}
