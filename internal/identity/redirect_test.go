package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRedirectTarget(t *testing.T) {
	const site = "https://palmora.example.com"

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"site relative path", "/reading/r1", true},
		{"root", "/", true},
		{"relative with query", "/reading/r1?section=love", true},
		{"absolute same host", "https://palmora.example.com/reading/r1", true},
		{"absolute same host http", "http://palmora.example.com/", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"protocol relative", "//evil.example.com/", false},
		{"backslash quirk", "/\\evil.example.com", false},
		{"external host", "https://evil.example.com/", false},
		{"subdomain of site", "https://login.palmora.example.com/", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"bare word", "reading", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validRedirectTarget(tt.target, site))
		})
	}
}
