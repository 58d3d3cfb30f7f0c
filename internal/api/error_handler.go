package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ryabkov/filegallery/internal/service"
	"github.com/ryabkov/filegallery/internal/storage"
	"github.com/ryabkov/filegallery/internal/util"
)

type errorResponse struct {
	Reason string `json:"reason"`
}

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, reason := classify(err)

		if status == http.StatusInternalServerError {
			log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		}

		if jsonErr := c.JSON(status, errorResponse{Reason: reason}); jsonErr != nil {
			log.Errorw("failed to write json response", "error", jsonErr)
		}
	}
}

func classify(err error) (int, string) {
	var responseErr util.ResponseError
	if errors.As(err, &responseErr) {
		return responseErr.Status, responseErr.Msg
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrTooManyLoginAttempts):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, service.ErrInvalidVote):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrFileNotFound), errors.Is(err, storage.ErrSessionNotFound):
		return http.StatusNotFound, "not found"
	}

	return http.StatusInternalServerError, "internal server error"
}

func isUnauthorizedError(err error) bool {
	return errors.Is(err, service.ErrInvalidCredentials) ||
		errors.Is(err, service.ErrMissingRefreshToken) ||
		errors.Is(err, service.ErrRefreshTokenInvalid) ||
		errors.Is(err, service.ErrRefreshTokenNotFoundOrUsed) ||
		errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenInvalid)
}
