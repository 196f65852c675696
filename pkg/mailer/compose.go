package mailer

import (
	"errors"

	mailtpl "github.com/oksasatya/go-ddd-catalog-api/pkg/mailer/templates"
)

var ErrEmptyJob = errors.New("email job has neither template nor content")

// Compose resolves the subject and bodies of a job, rendering its template when set.
func (j EmailJob) Compose() (subject, text, html string, err error) {
	if j.To == "" {
		return "", "", "", errors.New("email job has no recipient")
	}
	if j.Template != "" {
		data := j.Data
		if data == nil {
			data = map[string]any{}
		}
		if _, ok := data["Email"]; !ok {
			data["Email"] = j.To
		}
		return mailtpl.Render(j.Template, data)
	}
	if j.Subject == "" || (j.Text == "" && j.HTML == "") {
		return "", "", "", ErrEmptyJob
	}
	return j.Subject, j.Text, j.HTML, nil
}
