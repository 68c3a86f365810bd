package application

import (
	"context"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
)

// UserEvent describes a completed user save.
type UserEvent struct {
	User    *entity.User
	Created bool
}

// UserObserver reacts to account changes. Observers registered with
// AccountService.Observe run inside the saving transaction and abort it by
// returning an error; those registered with ObserveCommitted run after
// commit and their errors are only logged.
type UserObserver interface {
	UserSaved(ctx context.Context, ev UserEvent) error
	UserDeleted(ctx context.Context, userID string) error
}
