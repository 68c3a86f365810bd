package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
	"github.com/oksasatya/roommate-finder/testing/memdb"
)

func newAccounts(t *testing.T) (*AccountService, *memdb.Store) {
	t.Helper()
	store := memdb.New()
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	svc := NewAccountService(store.Users(), store, jwt, nil, nil, "ncsu.edu")
	svc.Observe(NewProfileProvisioner(store.Profiles(), ""))
	return svc, store
}

type recordingObserver struct {
	saved   []UserEvent
	deleted []string
	err     error
}

func (o *recordingObserver) UserSaved(_ context.Context, ev UserEvent) error {
	o.saved = append(o.saved, ev)
	return o.err
}

func (o *recordingObserver) UserDeleted(_ context.Context, id string) error {
	o.deleted = append(o.deleted, id)
	return o.err
}

func TestSaveRejectsNonInstitutionalEmail(t *testing.T) {
	svc, store := newAccounts(t)
	for _, email := range []string{"a@gmail.com", "a@cs.ncsu.edu", "ncsu.edu", "a@ncsu.edu.evil.com", ""} {
		u := &entity.User{Email: email, Password: "x"}
		err := svc.Save(context.Background(), u)
		assert.ErrorIs(t, err, entity.ErrInvalidEmailDomain, email)
		assert.Empty(t, u.ID)
	}
	assert.Equal(t, 0, store.UserCount())
	assert.Equal(t, 0, store.ProfileCount())
}

func TestSaveCreatesExactlyOneProfile(t *testing.T) {
	svc, store := newAccounts(t)
	ctx := context.Background()

	u := &entity.User{Email: "  Ada@NCSU.EDU ", Password: "x", IsActive: true}
	require.NoError(t, svc.Save(ctx, u))
	assert.Equal(t, "ada@ncsu.edu", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, 1, store.ProfileCount())

	p, err := store.Profiles().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, p.Visibility)
	assert.Equal(t, entity.DefaultProfilePhoto, p.ProfilePhoto)
	for _, pref := range []string{p.PreferenceGender, p.PreferenceDegree, p.PreferenceDiet, p.PreferenceCourse, p.PreferenceCountry} {
		assert.Equal(t, entity.NoPreference, pref)
	}

	// re-saving keeps the single profile
	u.FirstName = "Ada"
	require.NoError(t, svc.Save(ctx, u))
	assert.Equal(t, 1, store.ProfileCount())
}

func TestSaveRecreatesMissingProfile(t *testing.T) {
	svc, store := newAccounts(t)
	ctx := context.Background()

	u := &entity.User{Email: "ada@ncsu.edu", Password: "x"}
	require.NoError(t, svc.Save(ctx, u))
	store.DeleteProfileOf(u.ID)
	require.Equal(t, 0, store.ProfileCount())

	require.NoError(t, svc.Save(ctx, u))
	assert.Equal(t, 1, store.ProfileCount())
}

func TestSaveRollsBackWhenProfileCreationFails(t *testing.T) {
	svc, store := newAccounts(t)
	store.FailProfileCreate = errors.New("disk full")

	u := &entity.User{Email: "ada@ncsu.edu", Password: "x"}
	err := svc.Save(context.Background(), u)
	require.Error(t, err)
	assert.Empty(t, u.ID)
	assert.Equal(t, 0, store.UserCount())
	assert.Equal(t, 0, store.ProfileCount())
}

func TestSaveDuplicateEmail(t *testing.T) {
	svc, store := newAccounts(t)
	ctx := context.Background()
	require.NoError(t, svc.Save(ctx, &entity.User{Email: "ada@ncsu.edu"}))

	err := svc.Save(ctx, &entity.User{Email: "ADA@ncsu.edu"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, store.UserCount())
	assert.Equal(t, 1, store.ProfileCount())
}

func TestObserversOrdering(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()
	inTx := &recordingObserver{}
	after := &recordingObserver{err: errors.New("index down")}
	svc.Observe(inTx)
	svc.ObserveCommitted(after)

	u := &entity.User{Email: "ada@ncsu.edu"}
	require.NoError(t, svc.Save(ctx, u), "post-commit errors are logged, not returned")
	require.Len(t, inTx.saved, 1)
	assert.True(t, inTx.saved[0].Created)
	require.Len(t, after.saved, 1)

	require.NoError(t, svc.Save(ctx, u))
	assert.False(t, inTx.saved[1].Created)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.Equal(t, []string{u.ID}, inTx.deleted)
	assert.Equal(t, []string{u.ID}, after.deleted)

	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrUserNotFound)
}

func TestFailingObserverAbortsSave(t *testing.T) {
	svc, store := newAccounts(t)
	svc.Observe(&recordingObserver{err: errors.New("veto")})

	err := svc.Save(context.Background(), &entity.User{Email: "ada@ncsu.edu"})
	assert.EqualError(t, err, "veto")
	assert.Equal(t, 0, store.UserCount())
	assert.Equal(t, 0, store.ProfileCount())
}

func TestRegisterLoginRefresh(t *testing.T) {
	svc, store := newAccounts(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "ada@ncsu.edu", Password: "short"})
	assert.ErrorIs(t, err, helpers.ErrPasswordLength)

	u, err := svc.Register(ctx, RegisterInput{Email: "ada@ncsu.edu", Password: "correct-horse", FirstName: "Ada", LastName: "L"})
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "correct-horse", u.Password)
	assert.Equal(t, 1, store.ProfileCount())

	_, _, err = svc.Login(ctx, "ada@ncsu.edu", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, pair, err := svc.Login(ctx, " ADA@ncsu.edu", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)

	stored, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	next, uid, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
	assert.NotEmpty(t, next.AccessToken)

	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Email: "ada@ncsu.edu", Password: "correct-horse"})
	require.NoError(t, err)

	u.IsActive = false
	require.NoError(t, svc.Save(ctx, u))

	_, err = svc.Authenticate(ctx, "ada@ncsu.edu", "correct-horse")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

type brokenUsers struct {
	*memdb.UserRepo
	err error
}

func (b brokenUsers) GetByID(context.Context, string) (*entity.User, error) { return nil, b.err }

func TestGetByIDKeepsStorageErrors(t *testing.T) {
	svc, store := newAccounts(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "user-404")
	assert.ErrorIs(t, err, ErrUserNotFound)

	outage := errors.New("connection refused")
	svc.Users = brokenUsers{UserRepo: store.Users(), err: outage}
	_, err = svc.GetByID(ctx, "user-1")
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
