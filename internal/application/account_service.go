package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
)

const sessionTTL = 24 * time.Hour

type AccountService struct {
	Users       repo.UserRepository
	Tx          repo.TxManager
	JWT         *helpers.JWTManager
	Redis       *redis.Client
	Logger      *logrus.Logger
	EmailDomain string

	observers   []UserObserver
	afterCommit []UserObserver
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func SessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewAccountService(users repo.UserRepository, tx repo.TxManager, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, emailDomain string) *AccountService {
	return &AccountService{
		Users:       users,
		Tx:          tx,
		JWT:         jwt,
		Redis:       rdb,
		Logger:      logger,
		EmailDomain: emailDomain,
	}
}

// Observe registers an observer that runs inside the save transaction.
func (s *AccountService) Observe(o UserObserver) {
	s.observers = append(s.observers, o)
}

// ObserveCommitted registers a best-effort observer that runs after commit.
func (s *AccountService) ObserveCommitted(o UserObserver) {
	s.afterCommit = append(s.afterCommit, o)
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an active account and, through the observers, its profile.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}
	if err := s.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Save inserts u when it has no ID and updates it otherwise. The institutional
// email gate runs first; a failing gate or observer leaves nothing persisted.
func (s *AccountService) Save(ctx context.Context, u *entity.User) error {
	u.Email = entity.NormalizeEmail(u.Email)
	if err := u.Validate(s.EmailDomain); err != nil {
		return err
	}

	created := u.ID == ""
	ev := UserEvent{User: u, Created: created}
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if created {
			err = s.Users.Create(ctx, u)
		} else {
			err = s.Users.Update(ctx, u)
		}
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return ErrEmailTaken
		case errors.Is(err, repo.ErrNotFound):
			return ErrUserNotFound
		case err != nil:
			return err
		}
		for _, o := range s.observers {
			if err := o.UserSaved(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if created {
			u.ID = ""
		}
		return err
	}

	for _, o := range s.afterCommit {
		if oErr := o.UserSaved(ctx, ev); oErr != nil && s.Logger != nil {
			s.Logger.WithError(oErr).WithField("user_id", u.ID).Warn("post-commit user observer failed")
		}
	}
	return nil
}

// Delete removes the account; its profile and posts go with it.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Users.Delete(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		for _, o := range s.observers {
			if err := o.UserDeleted(ctx, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, o := range s.afterCommit {
		if oErr := o.UserDeleted(ctx, userID); oErr != nil && s.Logger != nil {
			s.Logger.WithError(oErr).WithField("user_id", userID).Warn("post-commit delete observer failed")
		}
	}
	if s.Redis != nil {
		_ = s.Redis.Del(ctx, SessionKey(userID)).Err()
	}
	return nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AccountService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.signPair(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.FullName(),
			"is_staff":   u.IsStaff,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		key := SessionKey(u.ID)
		if rErr := helpers.RedisHSetEx(ctx, s.Redis, key, fields, sessionTTL); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, nil
}

func (s *AccountService) signPair(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.Users.UpdateLastLogin(ctx, u.ID, time.Now()); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("update last_login failed")
	}
	return u, pair, nil
}

// Refresh rotates the session id and both tokens.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil || !u.IsActive {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	key := SessionKey(u.ID)
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	pair, err := s.signPair(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		_ = helpers.RedisHSetEx(ctx, s.Redis, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		}, sessionTTL)
	}
	return pair, u.ID, nil
}

func (s *AccountService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	if err := s.Redis.Del(ctx, SessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("drop session failed")
	}
}
