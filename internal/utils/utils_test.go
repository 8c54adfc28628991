package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithHeaders(remote string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestProxyResolver(t *testing.T) {
	resolver, err := NewProxyResolver([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"Direct", "203.0.113.9:5555", nil, "203.0.113.9"},
		{"Untrusted Peer X-Real-IP Ignored", "203.0.113.9:5555", map[string]string{"X-Real-IP": "10.0.0.4"}, "203.0.113.9"},
		{"Untrusted Peer Forwarded Ignored", "203.0.113.9:5555", map[string]string{"X-Forwarded-For": "198.51.100.77"}, "203.0.113.9"},
		{"Trusted Peer X-Real-IP", "10.0.0.2:443", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"Trusted Single Address", "192.0.2.1:443", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"Nearest Untrusted Hop", "10.0.0.2:443", map[string]string{"X-Forwarded-For": "198.51.100.1, 198.51.100.20, 10.1.1.1"}, "198.51.100.20"},
		{"Every Hop Trusted", "10.0.0.2:443", map[string]string{"X-Forwarded-For": "10.5.5.5, 10.1.1.1"}, "10.5.5.5"},
		{"Garbage Forwarded", "10.0.0.2:443", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.2"},
		{"Trusted Peer No Headers", "10.0.0.2:443", nil, "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := contextWithHeaders(tt.remote, tt.headers)
			assert.Equal(t, tt.want, resolver.Resolve(c))
		})
	}
}

func TestNewProxyResolver_Invalid(t *testing.T) {
	_, err := NewProxyResolver([]string{"10.0.0.0/33"})
	assert.Error(t, err)

	_, err = NewProxyResolver([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestGetRealIP(t *testing.T) {
	t.Run("Without Middleware", func(t *testing.T) {
		c := contextWithHeaders("203.0.113.9:5555", map[string]string{"X-Real-IP": "198.51.100.7"})
		assert.Equal(t, "203.0.113.9", GetRealIP(c))
	})

	t.Run("Resolved", func(t *testing.T) {
		c := contextWithHeaders("10.0.0.2:443", nil)
		c.Set(ClientIPKey, "198.51.100.7")
		assert.Equal(t, "198.51.100.7", GetRealIP(c))
	})
}

func TestGetUserAgent(t *testing.T) {
	c := contextWithHeaders("203.0.113.9:5555", nil)
	assert.Equal(t, "Unknown", GetUserAgent(c))

	c = contextWithHeaders("203.0.113.9:5555", map[string]string{"User-Agent": "curl/8.0"})
	assert.Equal(t, "curl/8.0", GetUserAgent(c))
}

func TestParseUserAgent(t *testing.T) {
	t.Run("Android Phone", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (Linux; Android 12; Pixel 6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36")
		assert.Equal(t, "mobile", info.DeviceType)
		assert.Equal(t, "android", info.Platform)
		assert.Equal(t, "Chrome", info.Browser)
		assert.False(t, info.IsBot)
	})

	t.Run("Desktop Mac", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15")
		assert.Equal(t, "desktop", info.DeviceType)
		assert.Equal(t, "mac", info.Platform)
	})

	t.Run("Unknown", func(t *testing.T) {
		info := ParseUserAgent("Unknown")
		assert.Equal(t, "unknown", info.DeviceType)
		assert.Equal(t, "Unknown", info.Browser)
	})
}

func TestGenerateJWTSecret(t *testing.T) {
	a, err := GenerateJWTSecret()
	require.NoError(t, err)
	b, err := GenerateJWTSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
