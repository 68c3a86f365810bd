package repository

import (
	"context"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
)

// ProfileRepository persists profiles. There is no public create path outside
// of provisioning.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	// GetByUserIDForUpdate reads the profile and locks it until the
	// surrounding transaction ends. Call it inside TxManager.WithinTx.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*entity.Profile, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
	// Touch re-saves the profile owned by userID, bumping updated_at.
	Touch(ctx context.Context, userID string) error
	Search(ctx context.Context, f ProfileFilter) ([]*entity.Profile, error)
}
