package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
)

func str(s string) *string { return &s }

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter(config.MessageConfig{Source: "OneGateway Website", Timezone: "Asia/Kolkata"})
	require.NoError(t, err)
	return f
}

func fullRecord() domain.EnrichedRecord {
	return domain.EnrichedRecord{
		ID: "rec-1",
		ContactSubmission: domain.ContactSubmission{
			Name:    "Asha",
			Email:   "asha@example.com",
			Phone:   "+911234567890",
			Company: "Acme",
			Message: "Need a demo",
		},
		ClientContext: domain.ClientContext{
			DeviceType: domain.DeviceMobile,
			UserAgent:  str("Mozilla/5.0 (iPhone)"),
			IPAddress:  str("49.37.1.2"),
			Region:     str("Karnataka"),
			City:       str("Bengaluru"),
			Country:    "IN",
		},
		// 14:05:09 IST
		CreatedAt: time.Date(2026, 3, 5, 8, 35, 9, 0, time.UTC),
	}
}

func TestFormat_FullRecord(t *testing.T) {
	f := newTestFormatter(t)

	out, err := f.Format(fullRecord())
	require.NoError(t, err)

	want := strings.Join([]string{
		"🔔 *New Contact Form Submission*",
		"",
		"👤 *Name:* Asha",
		"📧 *Email:* asha@example.com",
		"📱 *Phone:* +911234567890",
		"🏢 *Company:* Acme",
		"💬 *Message:* Need a demo",
		"",
		"📊 *User Analytics:*",
		"🌐 *IP:* 49.37.1.2",
		"📱 *Device:* mobile",
		"🏙️ *City:* Bengaluru",
		"📍 *Region:* Karnataka",
		"🇮🇳 *Country:* IN",
		"",
		"⏰ *Time:* 5/3/2026, 2:05:09 pm",
		"🌐 *Source:* OneGateway Website",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestFormat_OmitsAbsentFields(t *testing.T) {
	f := newTestFormatter(t)
	rec := fullRecord()
	rec.Company = ""
	rec.Message = ""
	rec.City = nil
	rec.Region = nil
	rec.IPAddress = nil

	out, err := f.Format(rec)
	require.NoError(t, err)

	assert.NotContains(t, out, "City")
	assert.NotContains(t, out, "Region")
	assert.NotContains(t, out, "*IP:*")
	assert.NotContains(t, out, "Company")
	assert.NotContains(t, out, "Message:")
	assert.NotContains(t, out, "\n\n\n", "no blank placeholder lines")
	assert.Contains(t, out, "📱 *Phone:* +911234567890\n\n📊 *User Analytics:*\n📱 *Device:* mobile\n🇮🇳 *Country:* IN\n\n⏰")
}

func TestFormat_Deterministic(t *testing.T) {
	f := newTestFormatter(t)
	rec := fullRecord()

	a, err := f.Format(rec)
	require.NoError(t, err)
	b, err := f.Format(rec)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFormat_EscapesMarkdown(t *testing.T) {
	f := newTestFormatter(t)
	rec := fullRecord()
	rec.Email = "first_last@example.com"
	rec.Message = "*bold* [link] C:\\temp"

	out, err := f.Format(rec)
	require.NoError(t, err)
	assert.Contains(t, out, `first\_last@example.com`)
	assert.Contains(t, out, `\*bold\* \[link] C:\temp`)
	assert.NotContains(t, out, `C:\\temp`)
}

func TestFormat_CountryFlag(t *testing.T) {
	f := newTestFormatter(t)
	rec := fullRecord()
	rec.Country = "US"

	out, err := f.Format(rec)
	require.NoError(t, err)
	assert.Contains(t, out, "🇺🇸 *Country:* US")
}

func TestFormatTime_MorningAndMidnight(t *testing.T) {
	f := newTestFormatter(t)
	assert.Equal(t, "17/10/2026, 9:00:00 am", f.FormatTime(time.Date(2026, 10, 17, 3, 30, 0, 0, time.UTC)))
	assert.Equal(t, "18/10/2026, 12:00:00 am", f.FormatTime(time.Date(2026, 10, 17, 18, 30, 0, 0, time.UTC)))
}

func TestNewFormatter_BadTimezone(t *testing.T) {
	_, err := NewFormatter(config.MessageConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestFlagEmoji(t *testing.T) {
	assert.Equal(t, "🇮🇳", flagEmoji("in"))
	assert.Equal(t, "🌍", flagEmoji("unknown"))
}
