package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/application"
	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
	"github.com/oksasatya/roommate-finder/pkg/response"
	"github.com/oksasatya/roommate-finder/pkg/validation"
)

func badRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{Code: "VALIDATION_ERROR", Details: validation.ToDetails(err)})
}

// writeError maps application and domain errors onto HTTP statuses.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidEmailDomain):
		response.Error(c, http.StatusBadRequest, err.Error(), response.ErrorBody{Code: "INVALID_EMAIL_DOMAIN", Details: map[string]string{"email": err.Error()}})
	case errors.Is(err, entity.ErrInvalidChoice), errors.Is(err, entity.ErrInvalidProfile):
		badRequest(c, err)
	case errors.Is(err, helpers.ErrPasswordLength):
		response.Error(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{Code: "VALIDATION_ERROR", Details: map[string]string{"password": err.Error()}})
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusConflict, err.Error(), response.ErrorBody{Code: "EMAIL_TAKEN"})
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, err.Error(), response.ErrorBody{Code: "UNAUTHORIZED"})
	case errors.Is(err, application.ErrInactiveUser):
		response.Error(c, http.StatusForbidden, err.Error(), response.ErrorBody{Code: "FORBIDDEN"})
	case errors.Is(err, application.ErrUserNotFound), errors.Is(err, application.ErrProfileNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), response.ErrorBody{Code: "NOT_FOUND"})
	case errors.Is(err, application.ErrInvalidToken):
		response.Error(c, http.StatusBadRequest, err.Error(), response.ErrorBody{Code: "INVALID_TOKEN"})
	case errors.Is(err, application.ErrUnsupportedPhoto):
		response.Error(c, http.StatusUnsupportedMediaType, err.Error(), response.ErrorBody{Code: "UNSUPPORTED_MEDIA_TYPE"})
	case errors.Is(err, application.ErrUnavailable):
		response.Error(c, http.StatusServiceUnavailable, err.Error(), response.ErrorBody{Code: "UNAVAILABLE"})
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{"path": c.FullPath(), "request_id": c.GetString("request_id")})
		response.Error(c, http.StatusInternalServerError, "internal error", response.ErrorBody{Code: "INTERNAL"})
	}
}
