package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://pub.example/specials", ResolveURL("https://pub.example/home", "/specials"))
	assert.Equal(t, "https://pub.example/menu/wings", ResolveURL("https://pub.example/menu/", "wings"))
	assert.Equal(t, "https://other.example/x", ResolveURL("https://pub.example/", "https://other.example/x"))
	assert.Equal(t, "", ResolveURL("https://pub.example/", "http://[::1"))
}

func TestPathExtension(t *testing.T) {
	assert.Equal(t, "jpg", PathExtension("https://pub.example/img/Wings.JPG?w=300"))
	assert.Equal(t, "", PathExtension("https://pub.example/specials"))
	assert.Equal(t, "webp", PathExtension("/uploads/steak-night.webp"))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://pub.example/a.png"))
	assert.False(t, IsHTTPURL("data:image/png;base64,AAAA"))
	assert.False(t, IsHTTPURL("/a.png"))
}
