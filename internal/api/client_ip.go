package api

import (
	"net/http"
	"strings"

	"github.com/onegateway/site-notify/internal/domain"
)

// clientIPHeaders in priority order.
var clientIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-Ip",
	"Cf-Connecting-Ip",
	"X-Client-Ip",
}

// ClientIP derives the caller's IP from proxy headers. For X-Forwarded-For
// only the first entry counts. Without any header the result is "unknown";
// the socket address is never used.
func ClientIP(r *http.Request) string {
	for _, name := range clientIPHeaders {
		v := r.Header.Get(name)
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return domain.UnknownIP
}
