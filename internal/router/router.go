package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	apperrors "likeboard/internal/errors"
	"likeboard/internal/handler"
	"likeboard/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	log *logrus.Logger,
	tokens middleware.TokenVerifier,
	userHandler *handler.UserHandler,
) {
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler(log)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/api-docs/index.html")
	})
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/signup", userHandler.Signup)
	e.POST("/login", userHandler.Login)
	e.GET("/user/:id", userHandler.GetUser)
	e.GET("/most-liked", userHandler.MostLiked)

	// Secured routes
	gate := middleware.Auth(tokens)
	e.GET("/me", userHandler.Me, gate)
	e.PUT("/me/update-password", userHandler.UpdatePassword, gate)
	e.PUT("/user/:id/like", userHandler.Like, gate)
	e.PUT("/user/:id/unlike", userHandler.Unlike, gate)
}

// errorHandler logs failures and renders {"message": ...}. Only the
// outer message reaches the client.
func errorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := apperrors.NewHTTPError(http.StatusInternalServerError, apperrors.InternalMessage)
		if he, ok := err.(*echo.HTTPError); ok {
			httpErr.StatusCode = he.Code
			if msg, ok := he.Message.(string); ok {
				httpErr.Message = msg
			} else {
				httpErr.Message = http.StatusText(he.Code)
			}
		}

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request().Method,
			"uri":        c.Request().RequestURI,
			"status":     httpErr.StatusCode,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).WithError(err)
		switch {
		case httpErr.StatusCode >= http.StatusInternalServerError:
			entry.Error("request failed")
		case httpErr.StatusCode >= http.StatusBadRequest:
			entry.Warn("request rejected")
		}

		var renderErr error
		if c.Request().Method == http.MethodHead {
			renderErr = c.NoContent(httpErr.StatusCode)
		} else {
			renderErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if renderErr != nil {
			log.WithError(renderErr).Error("failed to write error response")
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
