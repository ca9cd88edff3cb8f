package op

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostFromForwarded(t *testing.T) {
	tests := []struct {
		name     string
		headers  http.Header
		wantHost string
		wantOK   bool
	}{
		{
			name:     "no forwarded header",
			headers:  http.Header{},
			wantHost: "",
			wantOK:   false,
		},
		{
			name: "forwarded host",
			headers: http.Header{
				"Forwarded": []string{"for=192.0.2.60;host=proxy.example.com;proto=https"},
			},
			wantHost: "proxy.example.com",
			wantOK:   true,
		},
		{
			name: "first of multiple values wins",
			headers: http.Header{
				"Forwarded": []string{
					"host=first.example.com",
					"host=second.example.com",
				},
			},
			wantHost: "first.example.com",
			wantOK:   true,
		},
		{
			name: "forwarded without host parameter",
			headers: http.Header{
				"Forwarded": []string{"for=192.0.2.60;proto=https"},
			},
			wantHost: "",
			wantOK:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header = tt.headers
			host, ok := hostFromForwarded(r, []string{"Forwarded"})
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHost, host)
		})
	}
}
