package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/roommate-finder/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (with Data) or a pre-rendered Subject/Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "verify_email" or "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// ErrBadJob marks jobs that can never be delivered and should not be requeued.
var ErrBadJob = errors.New("bad email job")

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Render resolves the job's template, if any, into subject and bodies.
func (j *EmailJob) Render() error {
	j.To = strings.TrimSpace(j.To)
	if j.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrBadJob)
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return fmt.Errorf("%w: empty message", ErrBadJob)
		}
		return nil
	}
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if _, ok := j.Data["Email"]; !ok {
		j.Data["Email"] = j.To
	}
	s, t, h, err := mailtpl.Render(j.Template, j.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	j.Subject, j.Text, j.HTML = s, t, h
	return nil
}

// Deliver renders job and hands it to s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if err := job.Render(); err != nil {
		return err
	}
	return s.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
