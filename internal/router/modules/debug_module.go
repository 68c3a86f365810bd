package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/roommate-finder/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

// Register exposes expvar metrics to loopback and private-network clients only.
func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", middleware.OnlyAllowed(middleware.AllowPrivateIP()), gin.WrapH(expvar.Handler()))
}
