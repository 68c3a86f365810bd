package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/roommate-finder/pkg/response"
)

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

// NewRegistry mounts the /api group and answers unknown routes with the
// standard error envelope.
func NewRegistry(engine *gin.Engine) *Registry {
	engine.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "route not found", response.ErrorBody{Code: "NOT_FOUND"})
	})
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

// Use adds middleware applied to every /api route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
