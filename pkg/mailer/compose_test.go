package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_Template(t *testing.T) {
	job := EmailJob{To: "a@x.com", Template: "welcome", Data: map[string]any{"Username": "alice", "AppName": "Shop"}}

	subject, text, html, err := job.Compose()
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Shop, alice", subject)
	assert.Contains(t, text, "a@x.com", "recipient is used when Email is absent")
	assert.NotEmpty(t, html)
}

func TestCompose_Raw(t *testing.T) {
	subject, text, html, err := EmailJob{To: "a@x.com", Subject: "hi", Text: "body"}.Compose()
	require.NoError(t, err)
	assert.Equal(t, "hi", subject)
	assert.Equal(t, "body", text)
	assert.Empty(t, html)
}

func TestCompose_Invalid(t *testing.T) {
	_, _, _, err := EmailJob{To: "a@x.com"}.Compose()
	assert.ErrorIs(t, err, ErrEmptyJob)

	_, _, _, err = EmailJob{Subject: "hi", Text: "x"}.Compose()
	assert.Error(t, err)

	_, _, _, err = EmailJob{To: "a@x.com", Template: "missing"}.Compose()
	assert.Error(t, err)
}
