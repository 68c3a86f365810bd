package application

import (
	"context"
	"errors"
	"strings"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
)

type ForumService struct {
	Posts repo.ForumPostRepository
}

func NewForumService(posts repo.ForumPostRepository) *ForumService {
	return &ForumService{Posts: posts}
}

// List returns posts, optionally restricted to one author.
func (s *ForumService) List(ctx context.Context, f repo.PostFilter) ([]*entity.ForumPost, error) {
	f.UserID = strings.TrimSpace(f.UserID)
	posts, err := s.Posts.List(ctx, f)
	if errors.Is(err, repo.ErrNotFound) {
		// malformed author id
		return []*entity.ForumPost{}, nil
	}
	return posts, err
}

// Create is used by seeding; authoring endpoints are not exposed.
func (s *ForumService) Create(ctx context.Context, p *entity.ForumPost) error {
	return s.Posts.Create(ctx, p)
}
