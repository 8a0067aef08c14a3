package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealsteals/dealworker/services/cache"
)

const specialsPage = `<html><body>
	<nav><a href="/">Home</a></nav>
	<a href="/specials/tuesday">Tuesday Rump Night</a>
	<div style="display: none"><a href="/hidden-deal">Wings</a></div>
	<a href="/secret" hidden>Secret</a>
	<img src="/poster.jpg" width="800" height="600">
	<img src="/icon.png">
</body></html>`

func TestHTTPRenderer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(specialsPage))
	}))
	defer server.Close()

	r := NewHTTPRenderer(nil, time.Minute)
	require.NoError(t, r.Goto(context.Background(), server.URL+"/specials"))
	assert.Equal(t, server.URL+"/specials", r.CurrentURL())

	visible, err := r.EnumerateLinks(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []Link{{Href: "/", Text: "Home"}, {Href: "/specials/tuesday", Text: "Tuesday Rump Night"}}, visible)

	all, err := r.EnumerateLinks(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	images, vp, err := r.Images(context.Background())
	require.NoError(t, err)
	src, ok := LargestImage(images, vp)
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/poster.jpg", src)

	html, err := r.CurrentHTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, NormalizeText(html), "Tuesday Rump Night")
}

func TestHTTPRendererBlocksRateLimitedHost(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cacheSvc := cache.NewMemoryCache()
	r := NewHTTPRenderer(cacheSvc, time.Hour)

	assert.Error(t, r.Goto(context.Background(), server.URL+"/a"))
	_, err := cacheSvc.Get(blockKey(server.URL))
	assert.NoError(t, err)

	err = r.Goto(context.Background(), server.URL+"/b")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not requesting for 3600 seconds")
	assert.Equal(t, 1, hits)
}

func TestHTTPRendererNoPage(t *testing.T) {
	r := NewHTTPRenderer(nil, time.Minute)
	_, err := r.EnumerateLinks(context.Background(), true)
	assert.Error(t, err)
	_, err = r.CurrentHTML(context.Background())
	assert.Error(t, err)
}

func TestHTTPRendererFollowsRedirectForRelativeLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/site/home", http.StatusFound)
	})
	mux.HandleFunc("/site/home", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="specials">Weekly Specials</a></body></html>`))
	})
	mux.HandleFunc("/site/specials", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="tuesday">Tuesday Parma</a><img src="poster.jpg" width="900" height="700"></body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	r := NewHTTPRenderer(nil, time.Minute)
	require.NoError(t, r.Goto(context.Background(), server.URL+"/"))
	assert.Equal(t, server.URL+"/site/home", r.CurrentURL())

	got, err := NewDiscoverer(r, nil).Discover(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{URL: server.URL + "/site/tuesday", LinkType: LinkTypeText, LinkText: "tuesday parma"},
	}, got)

	images, vp, err := r.Images(context.Background())
	require.NoError(t, err)
	src, ok := LargestImage(images, vp)
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/site/poster.jpg", src)
}
