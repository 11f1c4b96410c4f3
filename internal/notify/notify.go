package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"jobwatch/internal/domain"
)

// ErrNotify marks a transport rejection: bad credentials, quota, malformed
// recipient. The orchestrator decides what happens to the seen set.
var ErrNotify = errors.New("notify error")

// Message is one outbound notification, transport-agnostic.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Transport sends a single message. Implemented by the SMTP client; tests
// substitute a fake.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type Notifier struct {
	transport Transport
	to        string
	siteName  string
	now       func() time.Time
}

func New(transport Transport, to, siteName string) *Notifier {
	return &Notifier{
		transport: transport,
		to:        to,
		siteName:  siteName,
		now:       time.Now,
	}
}

// Notify formats and sends one message describing newJobs. Guaranteed no-op
// on an empty slice so subscribers never get an empty mail.
func (n *Notifier) Notify(ctx context.Context, newJobs []domain.JobRecord) error {
	if len(newJobs) == 0 {
		return nil
	}

	msg := Message{
		To:       n.to,
		Subject:  n.subject(len(newJobs)),
		TextBody: n.textBody(newJobs),
	}
	html, err := n.htmlBody(newJobs)
	if err == nil {
		msg.HTMLBody = html
	}

	if err := n.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	return nil
}

func (n *Notifier) subject(count int) string {
	plural := ""
	if count != 1 {
		plural = "s"
	}
	return fmt.Sprintf("%d new %s job%s available", count, n.siteName, plural)
}

func (n *Notifier) textBody(jobs []domain.JobRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d new job posting(s) on %s:\n\n", len(jobs), n.siteName)
	for _, j := range jobs {
		fmt.Fprintf(&b, "- %s", j.Title)
		if pay := j.Extra["pay"]; pay != "" {
			fmt.Fprintf(&b, " (%s)", pay)
		}
		b.WriteString("\n")
		if hired := j.Extra["hired"]; hired != "" {
			fmt.Fprintf(&b, "  %s\n", hired)
		}
		fmt.Fprintf(&b, "  %s\n\n", j.URL)
	}
	fmt.Fprintf(&b, "Automated notification from jobwatch, %s.\n", n.now().Format("2006-01-02 15:04 MST"))
	return b.String()
}

var htmlTmpl = template.Must(template.New("email").Parse(`<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; }
  .job { border: 1px solid #ddd; border-radius: 8px; padding: 15px; margin: 15px 0; background: #f9f9f9; }
  .job-title { color: #2c3e50; font-size: 18px; font-weight: bold; margin-bottom: 8px; }
  .job-pay { color: #27ae60; font-size: 16px; font-weight: bold; }
  .job-link { display: inline-block; margin-top: 10px; padding: 8px 16px; background: #3498db; color: white; text-decoration: none; border-radius: 4px; }
  .timestamp { color: #7f8c8d; font-size: 12px; }
</style>
</head>
<body>
<h2>New jobs on {{.Site}}</h2>
<p>Found {{len .Jobs}} new job posting(s):</p>
{{range .Jobs}}<div class="job">
  <div class="job-title">{{.Title}}</div>
  {{with index .Extra "pay"}}<div class="job-pay">{{.}}</div>{{end}}
  {{with index .Extra "hired"}}<div>{{.}}</div>{{end}}
  <a href="{{.URL}}" class="job-link">Apply Now</a>
  <div class="timestamp">Found: {{$.FoundAt}}</div>
</div>
{{end}}<hr>
<p class="timestamp">This is an automated notification from jobwatch.</p>
</body>
</html>
`))

func (n *Notifier) htmlBody(jobs []domain.JobRecord) (string, error) {
	var b strings.Builder
	err := htmlTmpl.Execute(&b, struct {
		Site    string
		Jobs    []domain.JobRecord
		FoundAt string
	}{
		Site:    n.siteName,
		Jobs:    jobs,
		FoundAt: n.now().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
