package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/roommate-finder/config"
	"github.com/oksasatya/roommate-finder/internal/container"
	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/internal/interface/middleware"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
	"github.com/oksasatya/roommate-finder/pkg/validation"
	"github.com/oksasatya/roommate-finder/testing/memdb"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testApp struct {
	t      *testing.T
	engine *gin.Engine
	store  *memdb.Store
	svc    *Services
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	container.Reset()
	t.Cleanup(container.Reset)
	container.SetConfig(&config.Config{
		AppName:             "roommate-finder",
		AllowedEmailDomain:  "ncsu.edu",
		DefaultProfilePhoto: entity.DefaultProfilePhoto,
		CookieDomain:        "localhost",
		VerifyEmailURL:      "http://localhost/verify",
	})
	container.SetJWT(helpers.NewJWTManager("test-access", "test-refresh", time.Minute, time.Hour))

	store := memdb.New()
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Use(middleware.RequestID(), middleware.RealIP())
	svc := InitModulesWith(reg, Repos{Users: store.Users(), Profiles: store.Profiles(), Posts: store.Posts(), Tx: store})
	reg.RegisterAll()

	return &testApp{t: t, engine: engine, store: store, svc: svc}
}

func (a *testApp) do(method, path string, body any, cookies []*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (a *testApp) signup(email string) []*http.Cookie {
	a.t.Helper()
	w, _ := a.do(http.MethodPost, "/api/register", map[string]string{"email": email, "password": "correct-horse", "first_name": "Test"}, nil)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = a.do(http.MethodPost, "/api/login", map[string]string{"email": email, "password": "correct-horse"}, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func TestRegisterRejectsNonInstitutionalEmail(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(http.MethodPost, "/api/register", map[string]string{"email": "someone@gmail.com", "password": "correct-horse"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_EMAIL_DOMAIN", env.Error.Code)
	assert.Equal(t, 0, app.store.UserCount())
	assert.Equal(t, 0, app.store.ProfileCount())
}

func TestRegisterProvisionsDefaultProfile(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup("Ada@NCSU.edu")
	assert.Equal(t, 1, app.store.UserCount())
	assert.Equal(t, 1, app.store.ProfileCount())

	w, env := app.do(http.MethodGet, "/api/profile", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var p map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, entity.NoPreference, p["preference_gender"])
	assert.Equal(t, entity.NoPreference, p["preference_country"])
	assert.Equal(t, true, p["visibility"])
	assert.Equal(t, entity.DefaultProfilePhoto, p["profile_photo"])

	w, _ = app.do(http.MethodPost, "/api/register", map[string]string{"email": "ada@ncsu.edu", "password": "correct-horse"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, app.store.ProfileCount())
}

func TestUpdateProfileValidatesChoices(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup("ada@ncsu.edu")

	w, env := app.do(http.MethodPut, "/api/profile", map[string]any{"gender": "Robot"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "gender")

	w, env = app.do(http.MethodPut, "/api/profile", map[string]any{
		"name": "Ada", "gender": "Female", "degree": "Masters", "course": "Computer Science",
		"diet": "Vegetarian", "country": "in", "preference_gender": "Female",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "IN", p["country"])
	assert.Equal(t, true, p["is_profile_complete"])
	assert.Equal(t, "Female", p["preference_gender"])
}

func TestUpdateProfileBirthDate(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup("ada@ncsu.edu")

	birthDate := func(body map[string]any) any {
		t.Helper()
		w, env := app.do(http.MethodPut, "/api/profile", body, cookies)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var p map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &p))
		return p["birth_date"]
	}

	assert.Equal(t, "2001-04-09", birthDate(map[string]any{"birth_date": "2001-04-09"}))
	assert.Equal(t, "2001-04-09", birthDate(map[string]any{"birth_date": nil}))
	assert.Equal(t, "2001-04-09", birthDate(map[string]any{"name": "Ada"}))
	assert.Nil(t, birthDate(map[string]any{"birth_date": ""}))

	w, _ := app.do(http.MethodPut, "/api/profile", map[string]any{"birth_date": "09/04/2001"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProfilesFiltersByGender(t *testing.T) {
	app := newTestApp(t)
	ada := app.signup("ada@ncsu.edu")
	bob := app.signup("bob@ncsu.edu")
	cy := app.signup("cy@ncsu.edu")

	w, _ := app.do(http.MethodPut, "/api/profile", map[string]any{"gender": "Female"}, ada)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(http.MethodPut, "/api/profile", map[string]any{"gender": "Male"}, bob)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := app.do(http.MethodGet, "/api/profiles?gender=Male", nil, cy)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Male", list[0]["gender"])

	// the caller never sees their own profile
	w, env = app.do(http.MethodGet, "/api/profiles", nil, cy)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	w, env = app.do(http.MethodGet, "/api/profiles?gender=Robot", nil, cy)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "gender")
}

func TestHiddenProfileIsNotListed(t *testing.T) {
	app := newTestApp(t)
	ada := app.signup("ada@ncsu.edu")
	bob := app.signup("bob@ncsu.edu")

	w, env := app.do(http.MethodPut, "/api/profile/visibility", map[string]any{"visibility": false}, ada)
	require.Equal(t, http.StatusOK, w.Code)
	var p map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &p))
	id := p["id"].(string)

	w, env = app.do(http.MethodGet, "/api/profiles", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)

	w, _ = app.do(http.MethodGet, "/api/profiles/"+id, nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = app.do(http.MethodGet, "/api/profiles/"+id, nil, ada)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostsFilterByUser(t *testing.T) {
	app := newTestApp(t)
	ada := app.signup("ada@ncsu.edu")
	app.signup("bob@ncsu.edu")

	adaUser, err := app.svc.Accounts.Users.GetByEmail(context.Background(), "ada@ncsu.edu")
	require.NoError(t, err)
	bobUser, err := app.svc.Accounts.Users.GetByEmail(context.Background(), "bob@ncsu.edu")
	require.NoError(t, err)
	require.NoError(t, app.svc.Forum.Create(context.Background(), &entity.ForumPost{UserID: adaUser.ID, Title: "Looking for a room", Content: "Near campus"}))
	require.NoError(t, app.svc.Forum.Create(context.Background(), &entity.ForumPost{UserID: bobUser.ID, Title: "Sublet", Content: "Summer"}))

	w, env := app.do(http.MethodGet, "/api/posts?user="+bobUser.ID, nil, ada)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "Sublet", posts[0]["title"])

	w, env = app.do(http.MethodGet, "/api/posts", nil, ada)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	assert.Len(t, posts, 2)
}

func TestDeleteMeCascades(t *testing.T) {
	app := newTestApp(t)
	ada := app.signup("ada@ncsu.edu")

	w, _ := app.do(http.MethodDelete, "/api/me", nil, ada)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, app.store.UserCount())
	assert.Equal(t, 0, app.store.ProfileCount())
}

func TestOptionalBackendsReportUnavailable(t *testing.T) {
	app := newTestApp(t)
	ada := app.signup("ada@ncsu.edu")

	w, env := app.do(http.MethodPost, "/api/auth/verify/init", nil, ada)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "UNAVAILABLE", env.Error.Code)

	w, _ = app.do(http.MethodGet, "/api/profiles/search?q=raleigh", nil, ada)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthAndUnknownRoutes(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(http.MethodGet, "/api/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := app.do(http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, env = app.do(http.MethodGet, "/api/profiles/choices", nil, app.signup("ada@ncsu.edu"))
	require.Equal(t, http.StatusOK, w.Code)
	var choices map[string][]entity.Choice
	require.NoError(t, json.Unmarshal(env.Data, &choices))
	assert.Contains(t, choices, "gender")
	assert.Contains(t, choices, "preference_course")
}
