package imageurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	aiBase      = "http://ai.internal:8000"
	backendBase = "https://api.maya.example"
)

func TestNormalizeClassification(t *testing.T) {
	n := New(aiBase, backendBase)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"absolute http", "http://x/y.png", "http://x/y.png"},
		{"absolute https", "https://x/y.png", "https://x/y.png"},
		{"data uri", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"blob uri", "blob:https://x/123", "blob:https://x/123"},
		{"ai service path", "/images/a.png", aiBase + "/images/a.png"},
		{"backend rooted", "/uploads/b.png", backendBase + "/uploads/b.png"},
		{"backend relative", "foo/bar.png", backendBase + "/foo/bar.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(aiBase, backendBase)

	inputs := []string{
		"",
		"http://x/y.png",
		"https://x/y.png",
		"data:image/png;base64,AAAA",
		"blob:https://x/123",
		"/images/a.png",
		"/uploads/b.png",
		"foo/bar.png",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	n := New(aiBase+"/", backendBase+"/")
	assert.Equal(t, aiBase+"/images/a.png", n.Normalize("/images/a.png"))
	assert.Equal(t, backendBase+"/foo.png", n.Normalize("foo.png"))
}
