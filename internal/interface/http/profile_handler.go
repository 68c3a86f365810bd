package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/application"
	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
	"github.com/oksasatya/roommate-finder/internal/interface/middleware"
	"github.com/oksasatya/roommate-finder/pkg/response"
)

const maxPhotoBytes = 5 << 20

type ProfileHandler struct {
	Svc    *application.ProfileService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type profileResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user"`
	Name              string  `json:"name"`
	Bio               string  `json:"bio"`
	BirthDate         *string `json:"birth_date"`
	Hometown          string  `json:"hometown"`
	Gender            string  `json:"gender"`
	Degree            string  `json:"degree"`
	Diet              string  `json:"diet"`
	Course            string  `json:"course"`
	Country           string  `json:"country"`
	Sleep             string  `json:"sleep"`
	Neat              string  `json:"neat"`
	Study             string  `json:"study"`
	Drug              string  `json:"drug"`
	Visibility        bool    `json:"visibility"`
	IsProfileComplete bool    `json:"is_profile_complete"`
	ProfilePhoto      string  `json:"profile_photo"`
	EmailConfirmed    bool    `json:"email_confirmed"`

	HaveProperty           bool   `json:"have_property"`
	City                   string `json:"city"`
	GeneralLocationDetails string `json:"general_location_details"`
	NumberOfRooms          string `json:"number_of_rooms"`
	RentPerPerson          int    `json:"rent_per_person"`

	PreferenceGender  string `json:"preference_gender"`
	PreferenceDegree  string `json:"preference_degree"`
	PreferenceDiet    string `json:"preference_diet"`
	PreferenceCourse  string `json:"preference_course"`
	PreferenceCountry string `json:"preference_country"`

	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResponse(p *entity.Profile) profileResponse {
	var bd *string
	if p.BirthDate != nil {
		s := p.BirthDate.Format(time.DateOnly)
		bd = &s
	}
	return profileResponse{
		ID:                     p.ID,
		UserID:                 p.UserID,
		Name:                   p.Name,
		Bio:                    p.Bio,
		BirthDate:              bd,
		Hometown:               p.Hometown,
		Gender:                 p.Gender,
		Degree:                 p.Degree,
		Diet:                   p.Diet,
		Course:                 p.Course,
		Country:                p.Country,
		Sleep:                  p.Sleep,
		Neat:                   p.Neat,
		Study:                  p.Study,
		Drug:                   p.Drug,
		Visibility:             p.Visibility,
		IsProfileComplete:      p.IsProfileComplete,
		ProfilePhoto:           p.ProfilePhoto,
		EmailConfirmed:         p.EmailConfirmed,
		HaveProperty:           p.HaveProperty,
		City:                   p.City,
		GeneralLocationDetails: p.GeneralLocationDetails,
		NumberOfRooms:          p.NumberOfRooms,
		RentPerPerson:          p.RentPerPerson,
		PreferenceGender:       p.PreferenceGender,
		PreferenceDegree:       p.PreferenceDegree,
		PreferenceDiet:         p.PreferenceDiet,
		PreferenceCourse:       p.PreferenceCourse,
		PreferenceCountry:      p.PreferenceCountry,
		UpdatedAt:              p.UpdatedAt,
	}
}

func toProfileList(ps []*entity.Profile) []profileResponse {
	out := make([]profileResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProfileResponse(p))
	}
	return out
}

type updateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	// BirthDate is YYYY-MM-DD; an empty string clears it, null or absent keeps it.
	BirthDate *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Hometown  *string `json:"hometown" binding:"omitempty,max=100"`

	Gender  *string `json:"gender" binding:"omitempty,gender"`
	Degree  *string `json:"degree" binding:"omitempty,degree"`
	Diet    *string `json:"diet" binding:"omitempty,diet"`
	Course  *string `json:"course" binding:"omitempty,course"`
	Country *string `json:"country" binding:"omitempty,country"`
	Sleep   *string `json:"sleep" binding:"omitempty,sleep"`
	Neat    *string `json:"neat" binding:"omitempty,neat"`
	Study   *string `json:"study" binding:"omitempty,study"`
	Drug    *string `json:"drug" binding:"omitempty,drug"`

	HaveProperty           *bool   `json:"have_property"`
	City                   *string `json:"city" binding:"omitempty,city"`
	GeneralLocationDetails *string `json:"general_location_details" binding:"omitempty,max=500"`
	NumberOfRooms          *string `json:"number_of_rooms" binding:"omitempty,rooms"`
	RentPerPerson          *int    `json:"rent_per_person" binding:"omitempty,min=0"`

	PreferenceGender  *string `json:"preference_gender" binding:"omitempty,pref_gender"`
	PreferenceDegree  *string `json:"preference_degree" binding:"omitempty,pref_degree"`
	PreferenceDiet    *string `json:"preference_diet" binding:"omitempty,pref_diet"`
	PreferenceCourse  *string `json:"preference_course" binding:"omitempty,pref_course"`
	PreferenceCountry *string `json:"preference_country" binding:"omitempty,pref_country"`
}

func (r updateProfileRequest) toInput() application.UpdateProfileInput {
	in := application.UpdateProfileInput{
		Name:                   r.Name,
		Bio:                    r.Bio,
		Hometown:               r.Hometown,
		Gender:                 r.Gender,
		Degree:                 r.Degree,
		Diet:                   r.Diet,
		Course:                 r.Course,
		Country:                r.Country,
		Sleep:                  r.Sleep,
		Neat:                   r.Neat,
		Study:                  r.Study,
		Drug:                   r.Drug,
		HaveProperty:           r.HaveProperty,
		City:                   r.City,
		GeneralLocationDetails: r.GeneralLocationDetails,
		NumberOfRooms:          r.NumberOfRooms,
		RentPerPerson:          r.RentPerPerson,
		PreferenceGender:       r.PreferenceGender,
		PreferenceDegree:       r.PreferenceDegree,
		PreferenceDiet:         r.PreferenceDiet,
		PreferenceCourse:       r.PreferenceCourse,
		PreferenceCountry:      r.PreferenceCountry,
	}
	switch {
	case r.BirthDate == nil:
	case *r.BirthDate == "":
		in.ClearBirthDate = true
	default:
		if t, err := time.Parse(time.DateOnly, *r.BirthDate); err == nil {
			in.BirthDate = &t
		}
	}
	return in
}

// profileQuery binds the listing filter from the query string.
type profileQuery struct {
	Gender       string `form:"gender" binding:"omitempty,gender"`
	Degree       string `form:"degree" binding:"omitempty,degree"`
	Course       string `form:"course" binding:"omitempty,course"`
	Diet         string `form:"diet" binding:"omitempty,diet"`
	Sleep        string `form:"sleep" binding:"omitempty,sleep"`
	Neat         string `form:"neat" binding:"omitempty,neat"`
	Study        string `form:"study" binding:"omitempty,study"`
	Drug         string `form:"drug" binding:"omitempty,drug"`
	Country      string `form:"country" binding:"omitempty,country"`
	HaveProperty *bool  `form:"have_property"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset       int    `form:"offset" binding:"omitempty,min=0"`
}

func (q profileQuery) filter(viewerID string) repo.ProfileFilter {
	return repo.ProfileFilter{
		Gender:        q.Gender,
		Degree:        q.Degree,
		Course:        q.Course,
		Diet:          q.Diet,
		Sleep:         q.Sleep,
		Neat:          q.Neat,
		Study:         q.Study,
		Drug:          q.Drug,
		Country:       q.Country,
		HaveProperty:  q.HaveProperty,
		VisibleOnly:   true,
		ExcludeUserID: viewerID,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
}

func pageMeta(f repo.ProfileFilter, n int) response.PageMeta {
	limit, offset := f.Page()
	return response.PageMeta{Limit: limit, Offset: offset, Count: n}
}

// GetMine GET /api/profile
func (h *ProfileHandler) GetMine(c *gin.Context) {
	p, err := h.Svc.GetByUserID(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), "profile", nil)
}

// UpdateMine PUT /api/profile
func (h *ProfileHandler) UpdateMine(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.toInput())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), "profile updated", nil)
}

// SetVisibility PUT /api/profile/visibility {visibility}
func (h *ProfileHandler) SetVisibility(c *gin.Context) {
	var req struct {
		Visibility *bool `json:"visibility" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Svc.SetVisibility(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), *req.Visibility)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), "visibility updated", nil)
}

// UploadPhoto POST /api/profile/photo (multipart field "photo")
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes+1024)
	fh, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{Code: "VALIDATION_ERROR", Details: map[string]string{"photo": "is required"}})
		return
	}
	if fh.Size > maxPhotoBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "photo too large", response.ErrorBody{Code: "TOO_LARGE"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	p, err := h.Svc.UploadPhoto(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), "photo updated", nil)
}

// List GET /api/profiles lists visible profiles other than the caller's.
func (h *ProfileHandler) List(c *gin.Context) {
	var q profileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	f := q.filter(c.GetString(middleware.CtxUserIDKey))
	ps, err := h.Svc.Search(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileList(ps), "profiles", pageMeta(f, len(ps)))
}

// Search GET /api/profiles/search?q=
func (h *ProfileHandler) Search(c *gin.Context) {
	var q profileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	text := strings.TrimSpace(c.Query("q"))
	f := q.filter(c.GetString(middleware.CtxUserIDKey))
	ps, err := h.Svc.FullTextSearch(c.Request.Context(), text, f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileList(ps), "profiles", pageMeta(f, len(ps)))
}

// GetByID GET /api/profiles/:id
func (h *ProfileHandler) GetByID(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), "profile", nil)
}

// Choices GET /api/profiles/choices
func (h *ProfileHandler) Choices(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Svc.Choices(), "choices", nil)
}
