package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/avelar/clinic-api/internal/config"
	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/pkg/metrics"
)

type Service interface {
	SendAppointmentCreated(ctx context.Context, payload *model.AppointmentEventPayload) error
	SendAppointmentUpdated(ctx context.Context, payload *model.AppointmentEventPayload) error
	SendAppointmentCancelled(ctx context.Context, payload *model.AppointmentEventPayload) error
	SendSessionRescheduled(ctx context.Context, payload *model.AppointmentEventPayload) error
}

type service struct {
	cfg     config.EmailConfig
	dialer  *gomail.Dialer
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger, m *metrics.Metrics) Service {
	return &service{
		cfg:     cfg,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger:  logger,
		metrics: m,
	}
}

const (
	templateCreated     = "appointment_created"
	templateUpdated     = "appointment_updated"
	templateCancelled   = "appointment_cancelled"
	templateRescheduled = "session_rescheduled"
)

var templates = template.Must(template.New("email").Parse(`
{{define "appointment_created"}}
<p>Hello {{.PatientName}},</p>
<p>Your treatment plan has been scheduled{{if .StaffName}} with {{.StaffName}}{{end}}:
{{.Quantity}} {{.Frequency}} session(s), starting {{.When}}.</p>
<p><a href="{{.CalendarLink}}">Add the first session to Google Calendar</a></p>
{{end}}

{{define "appointment_updated"}}
<p>Hello {{.PatientName}},</p>
<p>Your treatment plan was updated{{if .StaffName}} with {{.StaffName}}{{end}}:
{{.Quantity}} {{.Frequency}} session(s), starting {{.When}}.</p>
<p><a href="{{.CalendarLink}}">Add the first session to Google Calendar</a></p>
{{end}}

{{define "appointment_cancelled"}}
<p>Hello {{.PatientName}},</p>
<p>Your treatment plan starting {{.When}} has been cancelled. If this was
unexpected, please contact the clinic.</p>
{{end}}

{{define "session_rescheduled"}}
<p>Hello {{.PatientName}},</p>
<p>Your session originally set for {{.PreviousWhen}} has been moved to
{{.When}}.</p>
<p><a href="{{.CalendarLink}}">Add the new time to Google Calendar</a></p>
{{end}}
`))

type templateData struct {
	PatientName  string
	StaffName    string
	Quantity     int
	Frequency    string
	When         string
	PreviousWhen string
	CalendarLink string
}

func (s *service) SendAppointmentCreated(ctx context.Context, p *model.AppointmentEventPayload) error {
	return s.send(ctx, templateCreated, "Your sessions are scheduled", p)
}

func (s *service) SendAppointmentUpdated(ctx context.Context, p *model.AppointmentEventPayload) error {
	return s.send(ctx, templateUpdated, "Your sessions have changed", p)
}

func (s *service) SendAppointmentCancelled(ctx context.Context, p *model.AppointmentEventPayload) error {
	return s.send(ctx, templateCancelled, "Your sessions were cancelled", p)
}

func (s *service) SendSessionRescheduled(ctx context.Context, p *model.AppointmentEventPayload) error {
	return s.send(ctx, templateRescheduled, "Your session was rescheduled", p)
}

func (s *service) send(ctx context.Context, tmpl, subject string, p *model.AppointmentEventPayload) error {
	if !s.cfg.Enabled {
		s.logger.Debug().
			Str("template", tmpl).
			Str("to", p.PatientEmail).
			Msg("email disabled, skipping send")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := templateData{
		PatientName:  p.PatientName,
		StaffName:    p.StaffName,
		Quantity:     p.Quantity,
		Frequency:    p.Frequency,
		When:         p.ScheduledAt.Format("Monday, 02 Jan 2006 at 15:04"),
		CalendarLink: CalendarLink(subject, p.ScheduledAt, time.Hour),
	}
	if !p.PreviousAt.IsZero() {
		data.PreviousWhen = p.PreviousAt.Format("Monday, 02 Jan 2006 at 15:04")
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("failed to render template %s: %w", tmpl, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", p.PatientEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.metrics.EmailsFailed.WithLabelValues(tmpl).Inc()
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.metrics.EmailsSent.WithLabelValues(tmpl).Inc()
	s.logger.Info().Str("template", tmpl).Str("to", p.PatientEmail).Msg("email sent")
	return nil
}

// CalendarLink builds a Google Calendar event link for a session, using the
// compact UTC timestamp format the render endpoint expects.
func CalendarLink(title string, start time.Time, duration time.Duration) string {
	const stamp = "20060102T150405Z"
	dates := start.UTC().Format(stamp) + "/" + start.Add(duration).UTC().Format(stamp)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", dates)
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}
