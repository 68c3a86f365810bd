package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/application"
	"github.com/oksasatya/roommate-finder/internal/interface/middleware"
	"github.com/oksasatya/roommate-finder/pkg/response"
)

type AuthHandler struct {
	Svc    *application.VerificationService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.VerificationService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// VerifyInit POST /api/auth/verify/init (auth required)
func (h *AuthHandler) VerifyInit(c *gin.Context) {
	link, already, err := h.Svc.Init(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if already {
		response.Success(c, http.StatusOK, gin.H{"already_verified": true}, "already verified", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verify_link": link}, "verification link", nil)
}

// VerifyConfirm POST /api/auth/verify/confirm {token}
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.Svc.Confirm(c.Request.Context(), req.Token); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}
