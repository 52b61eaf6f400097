package notify

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // the message timezone must resolve in minimal containers

	"github.com/osteele/liquid"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
)

// timeLayout mirrors the en-IN locale: day/month/year, 12-hour clock, lower-case meridiem.
const timeLayout = "2/1/2006, 3:04:05 pm"

// messageTemplate renders one line per present field. Liquid treats "" as
// truthy, so absent values are bound as nil rather than empty strings.
const messageTemplate = `🔔 *New Contact Form Submission*

👤 *Name:* {{ name | md }}
📧 *Email:* {{ email | md }}
📱 *Phone:* {{ phone | md }}
{% if company %}🏢 *Company:* {{ company | md }}
{% endif %}{% if message %}💬 *Message:* {{ message | md }}
{% endif %}
📊 *User Analytics:*
{% if ip_address %}🌐 *IP:* {{ ip_address | md }}
{% endif %}{% if device_type %}📱 *Device:* {{ device_type | md }}
{% endif %}{% if city %}🏙️ *City:* {{ city | md }}
{% endif %}{% if region %}📍 *Region:* {{ region | md }}
{% endif %}{% if country %}{{ country | flag }} *Country:* {{ country | md }}
{% endif %}
⏰ *Time:* {{ time }}
🌐 *Source:* {{ source | md }}`

// markdownEscaper escapes the entity markers of Telegram's legacy Markdown
// mode. A backslash is only special in front of those markers, so it is
// left alone.
var markdownEscaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)

// Formatter renders EnrichedRecords into the bot message text. Output depends
// only on the record, so formatting the same record twice yields the same text.
type Formatter struct {
	tpl    *liquid.Template
	loc    *time.Location
	source string
}

// NewFormatter parses the message template and resolves the display timezone.
func NewFormatter(cfg config.MessageConfig) (*Formatter, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
	}

	engine := liquid.NewEngine()
	engine.RegisterFilter("md", func(s string) string {
		return markdownEscaper.Replace(s)
	})
	engine.RegisterFilter("flag", flagEmoji)

	tpl, perr := engine.ParseString(messageTemplate)
	if perr != nil {
		return nil, fmt.Errorf("parsing message template: %w", perr)
	}

	return &Formatter{tpl: tpl, loc: loc, source: cfg.Source}, nil
}

// Format renders rec. The timestamp is the record's creation time shown in
// the configured timezone.
func (f *Formatter) Format(rec domain.EnrichedRecord) (string, error) {
	out, err := f.tpl.RenderString(f.bindings(rec))
	if err != nil {
		return "", fmt.Errorf("rendering message: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// FormatTime renders t the way the message does.
func (f *Formatter) FormatTime(t time.Time) string {
	return t.In(f.loc).Format(timeLayout)
}

func (f *Formatter) bindings(rec domain.EnrichedRecord) map[string]any {
	b := map[string]any{
		"name":   rec.Name,
		"email":  rec.Email,
		"phone":  rec.Phone,
		"time":   f.FormatTime(rec.CreatedAt),
		"source": f.source,
	}
	optional := map[string]string{
		"company":     rec.Company,
		"message":     rec.Message,
		"ip_address":  domain.Deref(rec.IPAddress),
		"device_type": string(rec.DeviceType),
		"city":        domain.Deref(rec.City),
		"region":      domain.Deref(rec.Region),
		"country":     rec.Country,
	}
	for k, v := range optional {
		if strings.TrimSpace(v) != "" {
			b[k] = v
		}
	}
	return b
}

// flagEmoji turns an ISO 3166 alpha-2 code into its regional-indicator flag.
func flagEmoji(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "🌍"
	}
	const base = 0x1F1E6
	return string([]rune{rune(base + int(code[0]-'A')), rune(base + int(code[1]-'A'))})
}
