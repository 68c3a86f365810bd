package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
	"github.com/oksasatya/roommate-finder/testing/memdb"
)

type fixture struct {
	store    *memdb.Store
	accounts *AccountService
	profiles *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	accounts := NewAccountService(store.Users(), store, helpers.NewJWTManager("a", "r", time.Minute, time.Hour), nil, nil, "ncsu.edu")
	profiles := NewProfileService(store.Profiles(), store.Users(), store, nil, 0, nil, nil, "", nil)
	accounts.Observe(NewProfileProvisioner(store.Profiles(), ""))
	accounts.ObserveCommitted(profiles)
	return &fixture{store: store, accounts: accounts, profiles: profiles}
}

func (f *fixture) user(t *testing.T, email string) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, IsActive: true}
	require.NoError(t, f.accounts.Save(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada@ncsu.edu")

	p, err := f.profiles.Update(ctx, u.ID, UpdateProfileInput{Gender: ptr("Robot")})
	assert.ErrorIs(t, err, entity.ErrInvalidChoice)
	assert.Nil(t, p)

	p, err = f.profiles.Update(ctx, u.ID, UpdateProfileInput{Name: ptr("Ada"), Gender: ptr(entity.GenderFemale)})
	require.NoError(t, err)
	assert.False(t, p.IsProfileComplete)
	assert.Equal(t, entity.NoPreference, p.PreferenceDiet)

	p, err = f.profiles.Update(ctx, u.ID, UpdateProfileInput{
		Degree:           ptr(entity.DegreeMasters),
		Course:           ptr(entity.CourseCS),
		Diet:             ptr(entity.DietVeg),
		Country:          ptr(" in "),
		PreferenceDiet:   ptr(entity.DietVeg),
		HaveProperty:     ptr(true),
		City:             ptr(entity.CityRaleigh),
		NumberOfRooms:    ptr(entity.Rooms3),
		RentPerPerson:    ptr(550),
		PreferenceGender: ptr(""),
	})
	require.NoError(t, err)
	assert.True(t, p.IsProfileComplete)
	assert.Equal(t, "IN", p.Country)
	assert.Equal(t, "Ada", p.Name, "unset fields are kept")
	assert.Equal(t, entity.NoPreference, p.PreferenceGender, "blank preference falls back to No Preference")

	_, err = f.profiles.Update(ctx, u.ID, UpdateProfileInput{RentPerPerson: ptr(-1)})
	assert.ErrorIs(t, err, entity.ErrInvalidProfile)

	_, err = f.profiles.Update(ctx, u.ID, UpdateProfileInput{Bio: ptr(strings.Repeat("x", 501))})
	assert.ErrorIs(t, err, entity.ErrInvalidProfile)

	_, err = f.profiles.Update(ctx, "user-404", UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSearchFiltersByEquality(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.user(t, "ada@ncsu.edu")
	bob := f.user(t, "bob@ncsu.edu")
	cy := f.user(t, "cy@ncsu.edu")

	_, err := f.profiles.Update(ctx, ada.ID, UpdateProfileInput{Gender: ptr(entity.GenderFemale), Diet: ptr(entity.DietVeg)})
	require.NoError(t, err)
	_, err = f.profiles.Update(ctx, bob.ID, UpdateProfileInput{Gender: ptr(entity.GenderMale), Diet: ptr(entity.DietVeg), HaveProperty: ptr(true)})
	require.NoError(t, err)
	_, err = f.profiles.Update(ctx, cy.ID, UpdateProfileInput{Gender: ptr(entity.GenderMale), Diet: ptr(entity.DietNonVeg)})
	require.NoError(t, err)

	got, err := f.profiles.Search(ctx, repo.ProfileFilter{Gender: entity.GenderMale})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, entity.GenderMale, p.Gender)
	}

	got, err = f.profiles.Search(ctx, repo.ProfileFilter{Gender: entity.GenderMale, Diet: entity.DietVeg})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bob.ID, got[0].UserID)

	got, err = f.profiles.Search(ctx, repo.ProfileFilter{HaveProperty: ptr(false)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.profiles.Search(ctx, repo.ProfileFilter{VisibleOnly: true, ExcludeUserID: ada.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.profiles.Search(ctx, repo.ProfileFilter{Degree: "Diploma"})
	assert.ErrorIs(t, err, entity.ErrInvalidChoice)
}

func TestGetRespectsVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.user(t, "ada@ncsu.edu")
	bob := f.user(t, "bob@ncsu.edu")

	p, err := f.profiles.SetVisibility(ctx, ada.ID, false)
	require.NoError(t, err)

	_, err = f.profiles.Get(ctx, p.ID, bob.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	got, err := f.profiles.Get(ctx, p.ID, ada.ID)
	require.NoError(t, err)
	assert.False(t, got.Visibility)

	_, err = f.profiles.Get(ctx, "profile-404", ada.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestConfirmEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada@ncsu.edu")

	require.NoError(t, f.profiles.ConfirmEmail(ctx, u.ID))
	p, err := f.profiles.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, p.EmailConfirmed)
}

func TestOptionalBackendsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada@ncsu.edu")

	_, err := f.profiles.UploadPhoto(ctx, u.ID, strings.NewReader("x"), "me.png", "image/png")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = f.profiles.FullTextSearch(ctx, "raleigh", repo.ProfileFilter{})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = f.profiles.FullTextSearch(ctx, "raleigh", repo.ProfileFilter{Gender: "Robot"})
	assert.ErrorIs(t, err, entity.ErrInvalidChoice)
}

func TestBuildSearchQuery(t *testing.T) {
	q := buildSearchQuery("raleigh vegetarian", repo.ProfileFilter{
		Gender:        entity.GenderMale,
		Country:       "IN",
		HaveProperty:  ptr(true),
		VisibleOnly:   true,
		ExcludeUserID: "u-1",
		Limit:         500,
		Offset:        40,
	})

	assert.Equal(t, repo.MaxPageSize, q["size"])
	assert.Equal(t, 40, q["from"])

	boolQ := q["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQ["filter"].([]map[string]any)
	assert.Equal(t, []map[string]any{
		{"term": map[string]any{"gender": entity.GenderMale}},
		{"term": map[string]any{"country": "IN"}},
		{"term": map[string]any{"have_property": true}},
		{"term": map[string]any{"visibility": true}},
	}, filters)

	must := boolQ["must"].([]map[string]any)
	mm := must[0]["multi_match"].(map[string]any)
	assert.Equal(t, "raleigh vegetarian", mm["query"])
	assert.Equal(t, []map[string]any{{"term": map[string]any{"user_id": "u-1"}}}, boolQ["must_not"])
}

func TestBuildSearchQueryMatchAll(t *testing.T) {
	q := buildSearchQuery("  ", repo.ProfileFilter{})
	boolQ := q["query"].(map[string]any)["bool"].(map[string]any)
	assert.NotContains(t, boolQ, "must")
	assert.NotContains(t, boolQ, "must_not")
	assert.Empty(t, boolQ["filter"])
	assert.Equal(t, repo.DefaultPageSize, q["size"])
}

func TestConcurrentProfileWritesKeepEveryChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada@ncsu.edu")

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := f.profiles.Update(ctx, u.ID, UpdateProfileInput{Name: ptr("Ada")})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, f.profiles.ConfirmEmail(ctx, u.ID))
		}()
		go func() {
			defer wg.Done()
			_, err := f.profiles.SetVisibility(ctx, u.ID, false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := f.store.Profiles().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.True(t, p.EmailConfirmed)
	assert.False(t, p.Visibility)
}

type memPhotos struct {
	mu      sync.Mutex
	objects map[string]bool
}

const memPhotosURL = "https://photos.test/"

func newMemPhotos() *memPhotos { return &memPhotos{objects: map[string]bool{}} }

func (m *memPhotos) Upload(_ context.Context, objectPath, _ string, _ io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectPath] = true
	return memPhotosURL + objectPath, nil
}

func (m *memPhotos) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectPath)
	return nil
}

func (m *memPhotos) PathFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, memPhotosURL) {
		return "", false
	}
	return strings.TrimPrefix(url, memPhotosURL), true
}

func (m *memPhotos) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for p := range m.objects {
		out = append(out, p)
	}
	return out
}

func TestUploadPhotoReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	photos := newMemPhotos()
	f.profiles.Photos = photos
	ctx := context.Background()
	u := f.user(t, "ada@ncsu.edu")

	_, err := f.profiles.UploadPhoto(ctx, u.ID, strings.NewReader("x"), "me.txt", "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedPhoto)

	first, err := f.profiles.UploadPhoto(ctx, u.ID, strings.NewReader("x"), "me.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first.ProfilePhoto, ".png"))

	second, err := f.profiles.UploadPhoto(ctx, u.ID, strings.NewReader("y"), "me.jpg", "image/jpeg")
	require.NoError(t, err)

	path, ok := photos.PathFromURL(second.ProfilePhoto)
	require.True(t, ok)
	assert.Equal(t, []string{path}, photos.paths())
}

func TestUploadPhotoRemovesObjectWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	photos := newMemPhotos()
	f.profiles.Photos = photos
	ctx := context.Background()
	u := f.user(t, "ada@ncsu.edu")

	f.store.FailProfileUpdate = errors.New("write failed")
	_, err := f.profiles.UploadPhoto(ctx, u.ID, strings.NewReader("x"), "me.png", "image/png")
	require.Error(t, err)

	assert.Empty(t, photos.paths())
	p, err := f.store.Profiles().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultProfilePhoto, p.ProfilePhoto)
}
