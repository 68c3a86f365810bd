package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/internal/domain/repository"
)

type ForumPostRepository struct {
	pool *pgxpool.Pool
}

func NewForumPostRepository(pool *pgxpool.Pool) *ForumPostRepository {
	return &ForumPostRepository{pool: pool}
}

func (r *ForumPostRepository) Create(ctx context.Context, p *entity.ForumPost) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO forum_posts (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.UserID, p.Title, p.Content)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt))
}

func (r *ForumPostRepository) List(ctx context.Context, f repository.PostFilter) ([]*entity.ForumPost, error) {
	sql, args := buildPostQuery(f)
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.ForumPost{}
	for rows.Next() {
		p := &entity.ForumPost{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

var _ repository.ForumPostRepository = (*ForumPostRepository)(nil)
