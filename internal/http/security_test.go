package http

import (
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:52134",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy honors XFF",
			remoteAddr: "10.0.0.5:443",
			xff:        "203.0.113.7, 10.0.0.5",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy honors X-Real-IP",
			remoteAddr: "127.0.0.1:80",
			xri:        "203.0.113.9",
			want:       "203.0.113.9",
		},
		{
			name:       "untrusted peer ignores XFF",
			remoteAddr: "198.51.100.4:1234",
			xff:        "203.0.113.7",
			want:       "198.51.100.4",
		},
		{
			name:       "garbage XFF falls back to peer",
			remoteAddr: "192.168.1.10:1234",
			xff:        "not-an-ip",
			want:       "192.168.1.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < requestsPerMinute; i++ {
		if !rl.allow("203.0.113.7") {
			t.Fatalf("request %d unexpectedly blocked", i+1)
		}
	}
	if rl.allow("203.0.113.7") {
		t.Fatal("request over the limit was allowed")
	}

	// Other clients are unaffected.
	if !rl.allow("203.0.113.8") {
		t.Fatal("separate client blocked")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.allow("203.0.113.7")
	rl.mu.Lock()
	rl.clients["203.0.113.7"].lastRequest = rl.clients["203.0.113.7"].lastRequest.Add(-staleClientAge - 1)
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	rl.mu.Lock()
	_, exists := rl.clients["203.0.113.7"]
	rl.mu.Unlock()
	if exists {
		t.Fatal("stale client not removed")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"line1\nline2", "line1\nline2"},
		{"null\x00byte", "nullbyte"},
		{"bell\x07char", "bellchar"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
