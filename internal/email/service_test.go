package email

import (
	"bytes"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarLink(t *testing.T) {
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	link := CalendarLink("Session with Ana", start, time.Hour)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)
	assert.Equal(t, "/calendar/render", u.Path)

	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Session with Ana", q.Get("text"))
	assert.Equal(t, "20240603T100000Z/20240603T110000Z", q.Get("dates"))
}

func TestCalendarLinkConvertsToUTC(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 10:00 in Sao Paulo is 13:00 UTC.
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, sp)
	link := CalendarLink("Session", start, 30*time.Minute)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "20240603T130000Z/20240603T133000Z", u.Query().Get("dates"))
}

func TestTemplatesRender(t *testing.T) {
	for _, name := range []string{templateCreated, templateUpdated, templateCancelled, templateRescheduled} {
		var buf bytes.Buffer
		err := templates.ExecuteTemplate(&buf, name, templateData{
			PatientName:  "Ana Souza",
			StaffName:    "Dr. Lima",
			Quantity:     4,
			Frequency:    "weekly",
			When:         "Monday, 03 Jun 2024 at 10:00",
			PreviousWhen: "Monday, 27 May 2024 at 10:00",
			CalendarLink: "https://calendar.google.com/calendar/render",
		})
		require.NoError(t, err, "template %s", name)
		assert.Contains(t, buf.String(), "Ana Souza", "template %s", name)
	}
}
