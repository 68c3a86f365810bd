package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/internal/domain/repository"
)

const userColumns = `id, email, password_hash, first_name, last_name, is_active, is_staff, last_login, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, is_active, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.FirstName, u.LastName, u.IsActive, u.IsStaff)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) scanOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsStaff, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.scanOne(ctx, "id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.scanOne(ctx, "email = $1", email)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, first_name = $3, last_name = $4,
		    is_active = $5, is_staff = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Password, u.FirstName, u.LastName, u.IsActive, u.IsStaff, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return mapErr(err)
}

// Delete removes the user; profiles and forum posts go with it via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
