package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/roommate-finder/internal/container"
	handlers "github.com/oksasatya/roommate-finder/internal/interface/http"
	"github.com/oksasatya/roommate-finder/internal/interface/middleware"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
)

type ForumModule struct {
	Handler *handlers.ForumHandler
	JWT     *helpers.JWTManager
}

func NewForumModule(h *handlers.ForumHandler, jwt *helpers.JWTManager) *ForumModule {
	return &ForumModule{Handler: h, JWT: jwt}
}

func (m *ForumModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	rg.GET("/posts",
		middleware.Auth(rdb, m.JWT),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
		m.Handler.List,
	)
}
