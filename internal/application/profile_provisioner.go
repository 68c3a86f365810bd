package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
)

// ProfileProvisioner keeps exactly one profile per user: it creates the
// profile when the user is created and re-saves it on every later save.
type ProfileProvisioner struct {
	Profiles     repo.ProfileRepository
	DefaultPhoto string
}

func NewProfileProvisioner(profiles repo.ProfileRepository, defaultPhoto string) *ProfileProvisioner {
	return &ProfileProvisioner{Profiles: profiles, DefaultPhoto: defaultPhoto}
}

func (p *ProfileProvisioner) UserSaved(ctx context.Context, ev UserEvent) error {
	if ev.Created {
		return p.create(ctx, ev.User.ID)
	}
	err := p.Profiles.Touch(ctx, ev.User.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return p.create(ctx, ev.User.ID)
	}
	if err != nil {
		return fmt.Errorf("touch profile: %w", err)
	}
	return nil
}

// UserDeleted is a no-op: the profile row is removed by ON DELETE CASCADE.
func (p *ProfileProvisioner) UserDeleted(context.Context, string) error { return nil }

func (p *ProfileProvisioner) create(ctx context.Context, userID string) error {
	if err := p.Profiles.Create(ctx, entity.NewProfile(userID, p.DefaultPhoto)); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

var _ UserObserver = (*ProfileProvisioner)(nil)
