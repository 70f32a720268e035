package leafwatch

import (
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders are consulted in order before the socket address.
var clientIPHeaders = []string{
	"X-Client-IP",
	"X-Forwarded-For",
	"CF-Connecting-IP",
	"Fastly-Client-IP",
	"True-Client-IP",
	"X-Real-IP",
	"X-Cluster-Client-IP",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
}

// ClientIP returns the originating address of r, or "" when none is valid.
func ClientIP(r *http.Request) string {
	for _, h := range clientIPHeaders {
		value := r.Header.Get(h)
		if value == "" {
			continue
		}
		if ip := firstValidIP(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}

// firstValidIP scans a comma separated header value, tolerating ports and
// the "for=" form of Forwarded.
func firstValidIP(value string) string {
	for _, part := range strings.Split(value, ",") {
		candidate := strings.TrimSpace(part)
		if semi := strings.IndexByte(candidate, ';'); semi >= 0 {
			candidate = candidate[:semi]
		}
		candidate = strings.TrimPrefix(strings.TrimPrefix(candidate, "for="), "FOR=")
		candidate = strings.Trim(candidate, `"`)
		if host, _, err := net.SplitHostPort(candidate); err == nil {
			candidate = host
		}
		candidate = strings.TrimSuffix(strings.TrimPrefix(candidate, "["), "]")
		if ip := net.ParseIP(candidate); ip != nil {
			return ip.String()
		}
	}
	return ""
}
