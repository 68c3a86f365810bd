package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
	"github.com/oksasatya/roommate-finder/pkg/mailer"
	tpl "github.com/oksasatya/roommate-finder/pkg/mailer/templates"
)

const verifyTokenTTL = 24 * time.Hour

func keyVerifyToken(t string) string { return "email:verify:token:" + t }

// JobPublisher is satisfied by *helpers.RabbitPublisher.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// VerificationService confirms that the account owner controls the
// institutional mailbox.
type VerificationService struct {
	Users     *AccountService
	Profiles  *ProfileService
	Redis     *redis.Client
	Pub       JobPublisher
	Logger    *logrus.Logger
	Sender    tpl.Sender
	VerifyURL string
	Enabled   bool
}

func NewVerificationService(users *AccountService, profiles *ProfileService, rdb *redis.Client, pub JobPublisher, logger *logrus.Logger, sender tpl.Sender, verifyURL string, enabled bool) *VerificationService {
	return &VerificationService{
		Users:     users,
		Profiles:  profiles,
		Redis:     rdb,
		Pub:       pub,
		Logger:    logger,
		Sender:    sender,
		VerifyURL: verifyURL,
		Enabled:   enabled,
	}
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Init issues a verification link for userID and enqueues the email.
// It reports alreadyVerified without issuing a token when the flag is set.
func (s *VerificationService) Init(ctx context.Context, userID string) (link string, alreadyVerified bool, err error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if p.EmailConfirmed {
		return "", true, nil
	}
	if s.Redis == nil {
		return "", false, fmt.Errorf("%w: verification store not configured", ErrUnavailable)
	}
	tok, err := genToken(32)
	if err != nil {
		return "", false, err
	}
	if err := s.Redis.Set(ctx, keyVerifyToken(tok), userID, verifyTokenTTL).Err(); err != nil {
		return "", false, err
	}
	link = s.VerifyURL + "?token=" + tok

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "", false, err
	}
	s.enqueue(ctx, u, tpl.VerifyEmail, tpl.NewEmailData(s.Sender, u.FullName(), u.Email,
		tpl.WithVerifyURL(link), tpl.WithExpiresIn(verifyTokenTTL)))
	return link, false, nil
}

// Confirm consumes token and marks the profile's email as confirmed.
func (s *VerificationService) Confirm(ctx context.Context, token string) (string, error) {
	if s.Redis == nil {
		return "", fmt.Errorf("%w: verification store not configured", ErrUnavailable)
	}
	uid, ok, err := helpers.RedisTake(ctx, s.Redis, keyVerifyToken(token))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidToken
	}
	if err := s.Profiles.ConfirmEmail(ctx, uid); err != nil {
		return "", err
	}
	return uid, nil
}

// Welcome enqueues the signup email. It is registered as a post-commit observer.
func (s *VerificationService) UserSaved(ctx context.Context, ev UserEvent) error {
	if !ev.Created {
		return nil
	}
	s.enqueue(ctx, ev.User, tpl.Welcome, tpl.NewEmailData(s.Sender, ev.User.FullName(), ev.User.Email))
	return nil
}

func (s *VerificationService) UserDeleted(context.Context, string) error { return nil }

func (s *VerificationService) enqueue(ctx context.Context, u *entity.User, template string, data tpl.EmailData) {
	if !s.Enabled || s.Pub == nil {
		return
	}
	job := mailer.EmailJob{To: u.Email, Template: template, Data: tpl.ToMap(data)}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		helpers.LogError(s.Logger, "enqueue email failed", err, logrus.Fields{"user_id": u.ID, "template": template})
	}
}

var _ UserObserver = (*VerificationService)(nil)
