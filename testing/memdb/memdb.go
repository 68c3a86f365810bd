// Package memdb is an in-memory implementation of the repository interfaces
// for tests. WithinTx snapshots the store and restores it when fn fails, so
// rollback behaviour can be asserted without Postgres. Transactions run one
// at a time, which stands in for the row locks Postgres would take.
package memdb

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/internal/domain/repository"
)

// Store holds all tables. The zero value is not usable; call New.
type Store struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	seq      int
	users    map[string]entity.User
	profiles map[string]entity.Profile
	posts    map[string]entity.ForumPost

	// FailProfileCreate makes the next profile insert fail with this error.
	FailProfileCreate error
	// FailProfileUpdate makes the next profile update fail with this error.
	FailProfileUpdate error
}

type txKey struct{}

func New() *Store {
	return &Store{
		users:    map[string]entity.User{},
		profiles: map[string]entity.Profile{},
		posts:    map[string]entity.ForumPost{},
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.Itoa(s.seq)
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s} }

// Profiles returns the profile repository view of the store.
func (s *Store) Profiles() *ProfileRepo { return &ProfileRepo{s} }

// Posts returns the forum post repository view of the store.
func (s *Store) Posts() *PostRepo { return &PostRepo{s} }

// UserCount and ProfileCount are test assertions helpers.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) ProfileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

// DeleteProfileOf drops a profile directly, simulating a legacy row.
func (s *Store) DeleteProfileOf(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.profiles {
		if p.UserID == userID {
			delete(s.profiles, id)
		}
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)

	s.mu.Lock()
	users := clone(s.users)
	profiles := clone(s.profiles)
	posts := clone(s.posts)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.profiles, s.posts = users, profiles, posts
		s.mu.Unlock()
		return err
	}
	return nil
}

func clone[T any](m map[string]T) map[string]T {
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.s.nextID("user")
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	r.s.users[id] = u
	return nil
}

// Delete cascades to profiles and posts like the foreign keys do.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for pid, p := range r.s.profiles {
		if p.UserID == id {
			delete(r.s.profiles, pid)
		}
	}
	for pid, p := range r.s.posts {
		if p.UserID == id {
			delete(r.s.posts, pid)
		}
	}
	return nil
}

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) Create(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailProfileCreate; err != nil {
		r.s.FailProfileCreate = nil
		return err
	}
	if _, ok := r.s.users[p.UserID]; !ok {
		return errors.New("memdb: profile references unknown user")
	}
	for _, existing := range r.s.profiles {
		if existing.UserID == p.UserID {
			return repository.ErrDuplicate
		}
	}
	p.ID = r.s.nextID("profile")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepo) GetByUserID(_ context.Context, userID string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.UserID == userID {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetByUserIDForUpdate needs no extra locking: WithinTx already serialises.
func (r *ProfileRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*entity.Profile, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *ProfileRepo) ListByUserIDs(_ context.Context, userIDs []string) ([]*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	out := []*entity.Profile{}
	for _, p := range r.s.profiles {
		if want[p.UserID] {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *ProfileRepo) Update(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailProfileUpdate; err != nil {
		r.s.FailProfileUpdate = nil
		return err
	}
	if _, ok := r.s.profiles[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepo) Touch(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.profiles {
		if p.UserID == userID {
			p.UpdatedAt = time.Now()
			r.s.profiles[id] = p
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *ProfileRepo) Search(_ context.Context, f repository.ProfileFilter) ([]*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Profile{}
	for _, p := range r.s.profiles {
		if f.Matches(&p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	limit, offset := f.Page()
	return window(out, limit, offset), nil
}

type PostRepo struct{ s *Store }

func (r *PostRepo) Create(_ context.Context, p *entity.ForumPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.UserID]; !ok {
		return errors.New("memdb: post references unknown user")
	}
	p.ID = r.s.nextID("post")
	p.CreatedAt = time.Now()
	r.s.posts[p.ID] = *p
	return nil
}

func (r *PostRepo) List(_ context.Context, f repository.PostFilter) ([]*entity.ForumPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.ForumPost{}
	for _, p := range r.s.posts {
		if f.UserID == "" || p.UserID == f.UserID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	limit, offset := f.Page()
	return window(out, limit, offset), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var (
	_ repository.UserRepository      = (*UserRepo)(nil)
	_ repository.ProfileRepository   = (*ProfileRepo)(nil)
	_ repository.ForumPostRepository = (*PostRepo)(nil)
	_ repository.TxManager           = (*Store)(nil)
)
