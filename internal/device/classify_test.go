package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onegateway/site-notify/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want domain.DeviceType
	}{
		{"empty", "", domain.DeviceUnknown},
		{"garbage", "curl/8.4.0", domain.DeviceUnknown},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", domain.DeviceMobile},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) Chrome/120.0 Mobile Safari/537.36", domain.DeviceMobile},
		{"opera mini", "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80)", domain.DeviceMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15", domain.DeviceTablet},
		{"generic tablet", "SomeBrowser (Tablet; rv:1.0)", domain.DeviceTablet},
		{"windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", domain.DeviceDesktop},
		{"mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) Safari/605.1.15", domain.DeviceDesktop},
		{"linux desktop", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0", domain.DeviceDesktop},
		{"case insensitive", "SOMETHING MOBILE", domain.DeviceMobile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ua))
		})
	}
}

func TestClassify_MobileBeatsTabletAndDesktop(t *testing.T) {
	// Android tablets that still advertise "Mobile" and Linux count as mobile.
	assert.Equal(t, domain.DeviceMobile, Classify("Mozilla/5.0 (Linux; Android 13; Tablet) Mobile"))
	assert.Equal(t, domain.DeviceTablet, Classify("Mozilla/5.0 (iPad; Macintosh)"))
}
