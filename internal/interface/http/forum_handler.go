package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/application"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
	"github.com/oksasatya/roommate-finder/pkg/response"
)

type ForumHandler struct {
	Svc    *application.ForumService
	Logger *logrus.Logger
}

func NewForumHandler(svc *application.ForumService, logger *logrus.Logger) *ForumHandler {
	return &ForumHandler{Svc: svc, Logger: logger}
}

type postQuery struct {
	User   string `form:"user"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type postResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// List GET /api/posts?user=<id>
func (h *ForumHandler) List(c *gin.Context) {
	var q postQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	f := repo.PostFilter{UserID: q.User, Limit: q.Limit, Offset: q.Offset}
	posts, err := h.Svc.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, postResponse{ID: p.ID, UserID: p.UserID, Title: p.Title, Content: p.Content, CreatedAt: p.CreatedAt})
	}
	limit, offset := f.Page()
	response.Success(c, http.StatusOK, out, "posts", response.PageMeta{Limit: limit, Offset: offset, Count: len(out)})
}
