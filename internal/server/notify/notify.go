// Package notify delivers one-time codes to users. Implementations send mail
// over SMTP or Amazon SES, publish an event on NATS for an external mailer,
// or just log the code for local development.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Message is a single code delivery.
type Message struct {
	To        string
	Code      string
	ExpiresAt time.Time
}

// Notifier hands a code to the user's inbox (or something that will).
type Notifier interface {
	SendCode(ctx context.Context, msg Message) error
}

// Closer is implemented by notifiers that hold a connection.
type Closer interface {
	Close() error
}

const Subject = "Your Notekeeper verification code"

// Content is a rendered email: subject plus plain and HTML bodies.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

var htmlBody = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif">
<p>Use the following code to sign in to Notekeeper:</p>
<p style="font-size: 28px; letter-spacing: 6px"><strong>{{.Code}}</strong></p>
<p>The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
{{- if .Link}}
<p><a href="{{.Link}}">Open Notekeeper</a></p>
{{- end}}
</body>
</html>
`))

// Renderer builds the email content for a Message.
type Renderer struct {
	BaseURL string
	now     func() time.Time
}

func NewRenderer(baseURL string) *Renderer {
	return &Renderer{BaseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

func (r *Renderer) Render(msg Message) (Content, error) {
	minutes := int(msg.ExpiresAt.Sub(r.now()).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	var link string
	if r.BaseURL != "" {
		link = r.BaseURL + "/sign-in"
	}

	var buf bytes.Buffer
	err := htmlBody.Execute(&buf, struct {
		Code    string
		Minutes int
		Link    string
	}{msg.Code, minutes, link})
	if err != nil {
		return Content{}, fmt.Errorf("render email: %w", err)
	}

	text := fmt.Sprintf("Your Notekeeper verification code is %s.\nIt expires in %d minutes.\n", msg.Code, minutes)
	if link != "" {
		text += "Sign in at " + link + "\n"
	}

	return Content{Subject: Subject, Text: text, HTML: buf.String()}, nil
}
