package bricklink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unreserved passthrough", "abcXYZ019-_.~", "abcXYZ019-_.~"},
		{"space", "a b", "a%20b"},
		{"ampersand and equals", "a&b=c", "a%26b%3Dc"},
		{"slash and colon", "https://x", "https%3A%2F%2Fx"},
		{"plus is escaped", "a+b", "a%2Bb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentEncode(tt.in))
		})
	}
}

func TestAuthHeader(t *testing.T) {
	creds := Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Token:          "tk",
		TokenSecret:    "ts",
	}
	header := authHeader("GET", "https://api.bricklink.com/api/store/v1/items/MINIFIG/sw0001a/price",
		map[string]string{"guide_type": "sold", "new_or_used": "N"}, creds)

	require.True(t, strings.HasPrefix(header, "OAuth "))
	assert.Contains(t, header, `oauth_consumer_key="ck"`)
	assert.Contains(t, header, `oauth_token="tk"`)
	assert.Contains(t, header, `oauth_signature_method="HMAC-SHA1"`)
	assert.Contains(t, header, `oauth_version="1.0"`)
	assert.Contains(t, header, "oauth_signature=")
	assert.Contains(t, header, "oauth_nonce=")
	assert.Contains(t, header, "oauth_timestamp=")
	// Query params are signed, never emitted in the header.
	assert.NotContains(t, header, "guide_type")
}

func TestAuthHeaderNonceVaries(t *testing.T) {
	creds := Credentials{ConsumerKey: "ck", ConsumerSecret: "cs", Token: "tk", TokenSecret: "ts"}
	a := authHeader("GET", "https://example.com/x", nil, creds)
	b := authHeader("GET", "https://example.com/x", nil, creds)
	assert.NotEqual(t, a, b)
}

func TestCredentialsConfigured(t *testing.T) {
	assert.False(t, Credentials{}.Configured())
	assert.False(t, Credentials{ConsumerKey: "a", ConsumerSecret: "b", Token: "c"}.Configured())
	assert.True(t, Credentials{ConsumerKey: "a", ConsumerSecret: "b", Token: "c", TokenSecret: "d"}.Configured())
}
