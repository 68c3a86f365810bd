package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	to, subject, text, html string
	err                     error
}

func (r *recorder) Send(_ context.Context, to, subject, text, html string) error {
	r.to, r.subject, r.text, r.html = to, subject, text, html
	return r.err
}

func TestDeliverTemplate(t *testing.T) {
	r := &recorder{}
	err := Deliver(context.Background(), r, EmailJob{
		To:       " ada@ncsu.edu ",
		Template: "welcome",
		Data:     map[string]any{"Name": "Ada", "CompanyName": "Wolfpack Rooms"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@ncsu.edu", r.to)
	assert.Equal(t, "Welcome to Wolfpack Rooms", r.subject)
	assert.Contains(t, r.text, "ada@ncsu.edu")
	assert.NotEmpty(t, r.html)
}

func TestDeliverPlain(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Deliver(context.Background(), r, EmailJob{To: "a@ncsu.edu", Subject: "hi", Text: "body"}))
	assert.Equal(t, "hi", r.subject)
	assert.Empty(t, r.html)
}

func TestDeliverBadJobs(t *testing.T) {
	r := &recorder{}
	cases := map[string]EmailJob{
		"no recipient":     {Subject: "x", Text: "y"},
		"empty message":    {To: "a@ncsu.edu"},
		"unknown template": {To: "a@ncsu.edu", Template: "nope"},
	}
	for name, job := range cases {
		t.Run(name, func(t *testing.T) {
			err := Deliver(context.Background(), r, job)
			assert.True(t, errors.Is(err, ErrBadJob), "got %v", err)
		})
	}
}

func TestDeliverSendError(t *testing.T) {
	boom := errors.New("mailgun down")
	err := Deliver(context.Background(), &recorder{err: boom}, EmailJob{To: "a@ncsu.edu", Subject: "s", Text: "t"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrBadJob))
}
