package repository

import (
	"context"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
)

type ForumPostRepository interface {
	Create(ctx context.Context, p *entity.ForumPost) error
	List(ctx context.Context, f PostFilter) ([]*entity.ForumPost, error)
}
