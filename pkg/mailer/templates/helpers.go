package templates

import (
	"time"

	"github.com/oksasatya/roommate-finder/config"
)

// Sender carries the branding shared by every outgoing email.
type Sender struct {
	CompanyName string
	AppName     string
	SupportURL  string
}

func SenderFromConfig(cfg *config.Config) Sender {
	return Sender{CompanyName: cfg.CompanyName, AppName: cfg.AppName, SupportURL: cfg.SupportURL}
}

// Option pattern
type Option func(*EmailData)

func WithVerifyURL(url string) Option { return func(d *EmailData) { d.VerifyURL = url } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return WithExpiresAt(time.Now().Add(dur))
}

// NewEmailData fills the common fields from s, then applies opts.
func NewEmailData(s Sender, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:        name,
		Email:       email,
		CompanyName: s.CompanyName,
		AppName:     s.AppName,
		SupportURL:  s.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
