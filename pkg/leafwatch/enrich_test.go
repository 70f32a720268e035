package leafwatch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goodcast/goodapi/pkg/leafwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "203.0.113.7:5123", "203.0.113.7"},
		{"x-client-ip wins", map[string]string{"X-Client-IP": "198.51.100.1", "X-Forwarded-For": "198.51.100.2"}, "10.0.0.1:1", "198.51.100.1"},
		{"first valid forwarded-for", map[string]string{"X-Forwarded-For": "unknown, 198.51.100.2, 198.51.100.3"}, "10.0.0.1:1", "198.51.100.2"},
		{"invalid header falls through", map[string]string{"X-Client-IP": "nope", "X-Real-IP": "198.51.100.4"}, "10.0.0.1:1", "198.51.100.4"},
		{"cloudflare before real-ip", map[string]string{"CF-Connecting-IP": "198.51.100.5", "X-Real-IP": "198.51.100.4"}, "10.0.0.1:1", "198.51.100.5"},
		{"forwarded for=", map[string]string{"Forwarded": `for="[2001:db8::1]:4711";proto=https`}, "10.0.0.1:1", "2001:db8::1"},
		{"ip with port", map[string]string{"X-Forwarded-For": "198.51.100.9:8080"}, "", "198.51.100.9"},
		{"nothing valid", nil, "pipe", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/leafwatch/events", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, leafwatch.ClientIP(r))
		})
	}
}

func TestParseUserAgent(t *testing.T) {
	agent := leafwatch.ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Equal(t, "Chrome", agent.Browser)
	assert.Equal(t, "120.0.0.0", agent.BrowserVersion)
	assert.Equal(t, "Windows", agent.OS)

	assert.Equal(t, leafwatch.Agent{}, leafwatch.ParseUserAgent(""))
}

func TestParseUTM(t *testing.T) {
	utm := leafwatch.ParseUTM("https://goodcast.xyz/?utm_source=x&utm_medium=social&utm_campaign=launch&utm_term=good&utm_content=banner")
	assert.Equal(t, leafwatch.UTM{Source: "x", Medium: "social", Campaign: "launch", Term: "good", Content: "banner"}, utm)

	assert.Equal(t, leafwatch.UTM{}, leafwatch.ParseUTM("https://goodcast.xyz/"))
	assert.Equal(t, leafwatch.UTM{}, leafwatch.ParseUTM("%zz"))
	assert.Equal(t, leafwatch.UTM{}, leafwatch.ParseUTM("/landing?utm_source=x"))
	assert.Equal(t, leafwatch.UTM{}, leafwatch.ParseUTM("goodcast.xyz?utm_source=x"))
	assert.Equal(t, leafwatch.UTM{}, leafwatch.ParseUTM("mailto:?utm_source=x"))
}

func TestIPAPI_Locate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json/203.0.113.7":
			assert.Equal(t, "secret", r.URL.Query().Get("key"))
			_, _ = w.Write([]byte(`{"status":"success","city":"Lisbon","country":"Portugal","regionName":"Lisbon"}`))
		case "/json/10.0.0.1":
			_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	api := leafwatch.NewIPAPI(srv.URL+"/json/", "secret")

	loc, err := api.Locate(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Lisbon", loc.City)
	assert.Equal(t, "Portugal", loc.Country)
	assert.Equal(t, "Lisbon", loc.Region)

	loc, err = api.Locate(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, loc)

	_, err = api.Locate(context.Background(), "198.51.100.1")
	assert.Error(t, err)
}
