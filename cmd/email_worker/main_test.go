package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/mailer"
)

type recordingSender struct {
	to, subject, text, html string
	err                     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func TestHandle(t *testing.T) {
	logger := helpers.NewDiscardLogger()
	ctx := context.Background()

	welcome, err := json.Marshal(mailer.EmailJob{
		To:       "a@x.com",
		Template: "welcome",
		Data:     map[string]any{"Username": "alice", "AppName": "Catalog"},
	})
	require.NoError(t, err)

	s := &recordingSender{}
	assert.Equal(t, ack, handle(ctx, welcome, s, logger))
	assert.Equal(t, "a@x.com", s.to)
	assert.NotEmpty(t, s.subject)
	assert.Contains(t, s.html, "alice")

	assert.Equal(t, drop, handle(ctx, []byte("{nope"), s, logger))
	assert.Equal(t, drop, handle(ctx, []byte(`{"to":"a@x.com"}`), s, logger))
	assert.Equal(t, drop, handle(ctx, []byte(`{"to":"a@x.com","template":"missing"}`), s, logger))

	failing := &recordingSender{err: errors.New("mailgun 502")}
	assert.Equal(t, retry, handle(ctx, welcome, failing, logger))
}

func TestConsumerTagIsFixed(t *testing.T) {
	// Cancel on shutdown only closes the delivery channel when it names the
	// tag the consumer was registered with.
	assert.NotEmpty(t, consumerTag)
}
