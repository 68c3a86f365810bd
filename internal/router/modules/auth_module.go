package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/roommate-finder/internal/container"
	handlers "github.com/oksasatya/roommate-finder/internal/interface/http"
	"github.com/oksasatya/roommate-finder/internal/interface/middleware"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
)

// AuthModule wires institutional email confirmation.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	verifyConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.POST("/auth/verify/confirm", verifyConfirmLimiter, m.Handler.VerifyConfirm)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/auth/verify/init", m.Handler.VerifyInit)
	}
}
