package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"none", nil, "unknown"},
		{"forwarded single", map[string]string{"X-Forwarded-For": "8.8.8.8"}, "8.8.8.8"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-Ip": "198.51.100.2"}, "198.51.100.2"},
		{"cloudflare", map[string]string{"Cf-Connecting-Ip": "198.51.100.3"}, "198.51.100.3"},
		{"client ip", map[string]string{"X-Client-Ip": "198.51.100.4"}, "198.51.100.4"},
		{"forwarded beats real ip", map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-Ip": "2.2.2.2"}, "1.1.1.1"},
		{"real ip beats cloudflare", map[string]string{"X-Real-Ip": "2.2.2.2", "Cf-Connecting-Ip": "3.3.3.3", "X-Client-Ip": "4.4.4.4"}, "2.2.2.2"},
		{"empty forwarded falls through", map[string]string{"X-Forwarded-For": " ", "X-Client-Ip": "4.4.4.4"}, "4.4.4.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
