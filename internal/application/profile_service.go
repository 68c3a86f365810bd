package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
)

// ErrUnsupportedPhoto is returned for uploads that are not images.
var ErrUnsupportedPhoto = errors.New("unsupported photo type")

// PhotoStore keeps profile pictures as objects addressed by path.
type PhotoStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
	PathFromURL(url string) (string, bool)
}

type ProfileService struct {
	Profiles repo.ProfileRepository
	Users    repo.UserRepository
	Tx       repo.TxManager
	Redis    *redis.Client
	CacheTTL time.Duration
	Photos   PhotoStore
	ES       *elasticsearch.Client
	ESIndex  string
	Logger   *logrus.Logger
}

func NewProfileService(profiles repo.ProfileRepository, users repo.UserRepository, tx repo.TxManager, rdb *redis.Client, cacheTTL time.Duration, photos PhotoStore, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		Profiles: profiles,
		Users:    users,
		Tx:       tx,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		Photos:   photos,
		ES:       es,
		ESIndex:  esIndex,
		Logger:   logger,
	}
}

func profileCacheKey(userID string) string {
	return "profile:user:" + userID
}

func (s *ProfileService) warn(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Warn(msg)
}

// GetByUserID reads through the Redis cache.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	if s.Redis != nil {
		var cached entity.Profile
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileCacheKey(userID), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	s.cache(ctx, p)
	return p, nil
}

// Get returns a profile by id. Hidden profiles are only visible to their owner.
func (s *ProfileService) Get(ctx context.Context, id, viewerID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if !p.Visibility && p.UserID != viewerID {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (s *ProfileService) cache(ctx context.Context, p *entity.Profile) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, profileCacheKey(p.UserID), p, s.CacheTTL); err != nil {
		s.warn(err, "profile cache write failed", logrus.Fields{"user_id": p.UserID})
	}
}

func (s *ProfileService) evict(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileCacheKey(userID)); err != nil {
		s.warn(err, "profile cache evict failed", logrus.Fields{"user_id": userID})
	}
}

// UpdateProfileInput carries a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	Name      *string
	Bio       *string
	BirthDate *time.Time
	Hometown  *string
	// ClearBirthDate resets the birth date to unknown and wins over BirthDate.
	ClearBirthDate bool

	Gender  *string
	Degree  *string
	Diet    *string
	Course  *string
	Country *string
	Sleep   *string
	Neat    *string
	Study   *string
	Drug    *string

	HaveProperty           *bool
	City                   *string
	GeneralLocationDetails *string
	NumberOfRooms          *string
	RentPerPerson          *int

	PreferenceGender  *string
	PreferenceDegree  *string
	PreferenceDiet    *string
	PreferenceCourse  *string
	PreferenceCountry *string
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (in UpdateProfileInput) apply(p *entity.Profile) {
	setString(&p.Name, in.Name)
	setString(&p.Bio, in.Bio)
	switch {
	case in.ClearBirthDate:
		p.BirthDate = nil
	case in.BirthDate != nil:
		bd := *in.BirthDate
		p.BirthDate = &bd
	}
	setString(&p.Hometown, in.Hometown)
	setString(&p.Gender, in.Gender)
	setString(&p.Degree, in.Degree)
	setString(&p.Diet, in.Diet)
	setString(&p.Course, in.Course)
	setString(&p.Country, in.Country)
	setString(&p.Sleep, in.Sleep)
	setString(&p.Neat, in.Neat)
	setString(&p.Study, in.Study)
	setString(&p.Drug, in.Drug)
	if in.HaveProperty != nil {
		p.HaveProperty = *in.HaveProperty
	}
	setString(&p.City, in.City)
	setString(&p.GeneralLocationDetails, in.GeneralLocationDetails)
	setString(&p.NumberOfRooms, in.NumberOfRooms)
	if in.RentPerPerson != nil {
		p.RentPerPerson = *in.RentPerPerson
	}
	setString(&p.PreferenceGender, in.PreferenceGender)
	setString(&p.PreferenceDegree, in.PreferenceDegree)
	setString(&p.PreferenceDiet, in.PreferenceDiet)
	setString(&p.PreferenceCourse, in.PreferenceCourse)
	setString(&p.PreferenceCountry, in.PreferenceCountry)
}

// Update applies a partial update to the caller's own profile and recomputes
// the completion flag.
func (s *ProfileService) Update(ctx context.Context, userID string, in UpdateProfileInput) (*entity.Profile, error) {
	return s.mutate(ctx, userID, func(p *entity.Profile) error {
		in.apply(p)
		p.Normalize()
		if err := p.Validate(); err != nil {
			return err
		}
		p.IsProfileComplete = p.Complete()
		return nil
	})
}

func (s *ProfileService) SetVisibility(ctx context.Context, userID string, visible bool) (*entity.Profile, error) {
	return s.mutate(ctx, userID, func(p *entity.Profile) error {
		p.Visibility = visible
		return nil
	})
}

// ConfirmEmail marks the owner's institutional email as confirmed.
func (s *ProfileService) ConfirmEmail(ctx context.Context, userID string) error {
	_, err := s.mutate(ctx, userID, func(p *entity.Profile) error {
		p.EmailConfirmed = true
		return nil
	})
	return err
}

// mutate locks the row for the read-modify-write so concurrent writers to the
// same profile are serialised instead of overwriting each other.
func (s *ProfileService) mutate(ctx context.Context, userID string, fn func(p *entity.Profile) error) (*entity.Profile, error) {
	var p *entity.Profile
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.Profiles.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		return s.Profiles.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.evict(ctx, userID)
	s.reindex(ctx, p)
	return p, nil
}

// UploadPhoto stores the image and points the profile at it. The previous
// photo is removed once the profile references the new one.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.Profile, error) {
	if s.Photos == nil {
		return nil, fmt.Errorf("%w: photo storage not configured", ErrUnavailable)
	}
	if !helpers.IsImageContentType(contentType) {
		return nil, ErrUnsupportedPhoto
	}
	if _, err := s.Profiles.GetByUserID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("profile_pics", userID, uuid.NewString()+ext))
	url, err := s.Photos.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	var old string
	p, err := s.mutate(ctx, userID, func(p *entity.Profile) error {
		old = p.ProfilePhoto
		p.ProfilePhoto = url
		return nil
	})
	if err != nil {
		if dErr := s.Photos.Delete(ctx, objectPath); dErr != nil {
			s.warn(dErr, "delete orphaned photo failed", logrus.Fields{"user_id": userID, "object": objectPath})
		}
		return nil, err
	}
	if prev, ok := s.Photos.PathFromURL(old); ok {
		if dErr := s.Photos.Delete(ctx, prev); dErr != nil {
			s.warn(dErr, "delete previous photo failed", logrus.Fields{"user_id": userID, "object": prev})
		}
	}
	return p, nil
}

// Search lists profiles matching every set attribute of f.
func (s *ProfileService) Search(ctx context.Context, f repo.ProfileFilter) ([]*entity.Profile, error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.Profiles.Search(ctx, f)
}

// Choices returns every enumeration with its display labels.
func (s *ProfileService) Choices() map[string]entity.ChoiceSet {
	return entity.AllChoices()
}

// UserSaved refreshes derived state once a user save has committed.
func (s *ProfileService) UserSaved(ctx context.Context, ev UserEvent) error {
	s.evict(ctx, ev.User.ID)
	p, err := s.Profiles.GetByUserID(ctx, ev.User.ID)
	if err != nil {
		return err
	}
	s.reindex(ctx, p)
	return nil
}

func (s *ProfileService) UserDeleted(ctx context.Context, userID string) error {
	s.evict(ctx, userID)
	return s.deleteFromIndex(ctx, userID)
}

var _ UserObserver = (*ProfileService)(nil)
