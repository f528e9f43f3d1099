package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/textutil"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("jobtracker/notify")

// MaxItems caps the rows of a notification.
const MaxItems = 20

// Notifier is told about the postings that are new in this run.
type Notifier interface {
	Notify(ctx context.Context, newPostings []posting.Posting) error
}

type Config struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	// comma separated recipients
	To string `json:"to"`
}

func DefaultConfig() Config {
	return Config{Port: 587}
}

// Missing lists the settings required to send mail that are empty.
func (c Config) Missing() []string {
	missing := []string{}
	for _, setting := range []struct {
		name  string
		value string
	}{
		{"SMTP_HOST", c.Host},
		{"SMTP_USER", c.Username},
		{"SMTP_PASS", c.Password},
		{"MAIL_FROM", c.From},
		{"MAIL_TO", c.To},
	} {
		if strings.TrimSpace(setting.value) == "" {
			missing = append(missing, setting.name)
		}
	}
	return missing
}

// Sender delivers a composed message.
type Sender func(addr string, auth smtp.Auth, mail *email.Email) error

func sendSMTP(addr string, auth smtp.Auth, mail *email.Email) error {
	return mail.Send(addr, auth)
}

type Email struct {
	config Config
	send   Sender
}

func NewEmail(config Config) Email {
	return Email{config: config, send: sendSMTP}
}

// WithSender replaces the smtp transport.
func (e Email) WithSender(send Sender) Email {
	e.send = send
	return e
}

type row struct {
	DateFound string
	Source    string
	Company   string
	Title     string
	Level     string
	Location  string
	URL       string
}

var bodyTemplate = template.Must(template.New("body").Parse(`<html>
<body>
<h2>📋 백엔드 이직공고 신규 알림</h2>
<p>신규 공고 <strong>{{.Total}}건</strong>이 발견되었습니다.</p>
{{if .Truncated}}<p>(상위 {{.Max}}건만 표시)</p>
{{end}}<table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse;">
<thead>
<tr>
<th>DateFound</th><th>Source</th><th>Company</th>
<th>Title</th><th>Level</th><th>Location</th><th>Link</th>
</tr>
</thead>
<tbody>
{{range .Rows}}<tr><td>{{.DateFound}}</td><td>{{.Source}}</td><td>{{.Company}}</td><td>{{.Title}}</td><td>{{.Level}}</td><td>{{.Location}}</td><td>{{if .URL}}<a href="{{.URL}}">링크</a>{{else}}-{{end}}</td></tr>
{{end}}</tbody>
</table>
<br>
<p><em>이 메일은 jobtracker에 의해 자동 발송되었습니다.</em></p>
</body>
</html>
`))

// Subject is the subject line of a notification about `count` postings.
func Subject(count int) string {
	return fmt.Sprintf("[Job Tracker] 신규 공고 %d건 알림", count)
}

// Body renders the html table of at most MaxItems postings.
func Body(newPostings []posting.Posting) (string, error) {
	shown := newPostings
	if len(shown) > MaxItems {
		shown = shown[:MaxItems]
	}
	rows := make([]row, len(shown))
	for i, p := range shown {
		rows[i] = row{
			DateFound: p.DateFound,
			Source:    p.Source,
			Company:   p.Company,
			Title:     p.Title,
			Level:     p.Level,
			Location:  p.Location,
			URL:       p.URL,
		}
	}

	buf := &bytes.Buffer{}
	err := bodyTemplate.Execute(buf, map[string]any{
		"Total":     len(newPostings),
		"Truncated": len(newPostings) > MaxItems,
		"Max":       MaxItems,
		"Rows":      rows,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Notify is a no-op when mail is disabled, when there is nothing new or
// when the smtp settings are incomplete.
func (e Email) Notify(ctx context.Context, newPostings []posting.Posting) error {
	if !e.config.Enabled {
		slog.DebugContext(ctx, "email notifications disabled, skipping")
		return nil
	}
	if len(newPostings) == 0 {
		slog.InfoContext(ctx, "no new postings, not sending email")
		return nil
	}
	missing := e.config.Missing()
	if len(missing) > 0 {
		slog.WarnContext(ctx, "email settings incomplete, skipping", "missing", strings.Join(missing, ", "))
		return nil
	}

	ctx, span := tracer.Start(ctx, "Notify", trace.WithAttributes(
		attribute.Int("postings", len(newPostings)),
	))
	defer span.End()

	body, err := Body(newPostings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render email body")
		return err
	}

	recipients := textutil.SplitList(e.config.To)
	mail := email.NewEmail()
	mail.From = e.config.From
	mail.To = recipients
	mail.Subject = Subject(len(newPostings))
	mail.HTML = []byte(body)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	err = e.send(addr, smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host), mail)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = e.send(addr, nil, mail)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	slog.InfoContext(ctx, "sent email", "to", recipients, "new", len(newPostings))
	return nil
}
