package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "likeboard/internal/errors"
	"likeboard/internal/middleware"
	"likeboard/internal/model"
	"likeboard/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// AuthRequest is the body of signup and login.
type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest is the body of a password change.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// MostLikedResponse wraps the leaderboard.
type MostLikedResponse struct {
	Users []model.UserPublic `json:"users"`
}

// bind decodes and validates the body, answering 400 with guard on failure.
// Decoder details stay internal.
func bind(c echo.Context, req interface{}, guard error) error {
	if err := c.Bind(req); err != nil {
		if he, ok := err.(*echo.HTTPError); ok && he.Internal != nil {
			err = he.Internal
		}
		return echo.NewHTTPError(http.StatusBadRequest, guard.Error()).SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, guard.Error()).SetInternal(err)
	}
	return nil
}

func toHTTPError(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message).SetInternal(err)
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AuthRequest true "Credentials"
// @Success 200 {object} model.UserAuth
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req AuthRequest
	if err := bind(c, &req, apperrors.ErrMissingCredentials); err != nil {
		return err
	}

	res, err := h.svc.Signup(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// Login godoc
// @Summary Log in and receive a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AuthRequest true "Credentials"
// @Success 200 {object} model.UserAuth
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req AuthRequest
	if err := bind(c, &req, apperrors.ErrMissingCredentials); err != nil {
		return err
	}

	res, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserPublic
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.svc.GetUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.UserPublic
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Like godoc
// @Summary Like a user
// @Tags likes
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/{id}/like [put]
func (h *UserHandler) Like(c echo.Context) error {
	return h.updateLikes(c, true)
}

// Unlike godoc
// @Summary Withdraw a like
// @Tags likes
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/{id}/unlike [put]
func (h *UserHandler) Unlike(c echo.Context) error {
	return h.updateLikes(c, false)
}

func (h *UserHandler) updateLikes(c echo.Context, like bool) error {
	err := h.svc.UpdateLikes(c.Request().Context(), service.UpdateLikesInput{
		LikerID: middleware.UserID(c),
		UserID:  c.Param("id"),
		Like:    like,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}

// UpdatePassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body UpdatePasswordRequest true "New password"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me/update-password [put]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	var req UpdatePasswordRequest
	if err := bind(c, &req, apperrors.ErrMissingPassword); err != nil {
		return err
	}

	err := h.svc.UpdatePassword(c.Request().Context(), service.UpdatePasswordInput{
		UserID:   middleware.UserID(c),
		Password: req.Password,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}

// MostLiked godoc
// @Summary Users ordered by like count
// @Tags likes
// @Produce json
// @Success 200 {object} MostLikedResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /most-liked [get]
func (h *UserHandler) MostLiked(c echo.Context) error {
	users, err := h.svc.GetMostLikedUsers(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MostLikedResponse{Users: users})
}
