package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/roommate-finder/internal/container"
	handlers "github.com/oksasatya/roommate-finder/internal/interface/http"
	"github.com/oksasatya/roommate-finder/internal/interface/middleware"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
)

// ProfileModule wires the caller's own profile and the roommate listing.
// All routes require authentication.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.GetMine)
		auth.PUT("/profile", m.Handler.UpdateMine)
		auth.PUT("/profile/visibility", m.Handler.SetVisibility)
		auth.POST("/profile/photo", middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadPhoto)

		auth.GET("/profiles", m.Handler.List)
		auth.GET("/profiles/search", m.Handler.Search)
		auth.GET("/profiles/choices", m.Handler.Choices)
		auth.GET("/profiles/:id", m.Handler.GetByID)
	}
}
