package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

func newCacheRouter(ttl time.Duration) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cache.New(ttl, 2*ttl)
	r.Use(ResponseCache(store, ttl))

	hits := 0
	r.GET("/catalog", func(c *gin.Context) {
		hits++
		c.Header("X-Origin", "handler")
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	r.GET("/missing", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusNotFound, gin.H{"error": "nope"})
	})
	r.POST("/catalog", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusCreated, gin.H{"hits": hits})
	})
	return r, &hits
}

func TestResponseCache_ServesSecondGetFromStore(t *testing.T) {
	r, hits := newCacheRouter(time.Minute)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	if *hits != 1 {
		t.Fatalf("handler ran %d times; want 1", *hits)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("cached body differs: %q vs %q", w1.Body.String(), w2.Body.String())
	}
	if w2.Header().Get("X-Origin") != "handler" {
		t.Fatalf("cached response dropped headers: %v", w2.Header())
	}
}

func TestResponseCache_KeyIncludesQueryString(t *testing.T) {
	r, hits := newCacheRouter(time.Minute)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog?page="+strconv.Itoa(i), nil))
	}
	if *hits != 2 {
		t.Fatalf("distinct URIs should miss independently; handler ran %d times", *hits)
	}
}

func TestResponseCache_SkipsNonGetAndNon2xx(t *testing.T) {
	r, hits := newCacheRouter(time.Minute)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/catalog", nil))
	}
	if *hits != 2 {
		t.Fatalf("POST must bypass the cache; handler ran %d times", *hits)
	}

	*hits = 0
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	}
	if *hits != 2 {
		t.Fatalf("404s must not be stored; handler ran %d times", *hits)
	}
}

func TestResponseCache_ExpiresAfterTTL(t *testing.T) {
	r, hits := newCacheRouter(20 * time.Millisecond)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalog", nil))
	time.Sleep(40 * time.Millisecond)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalog", nil))

	if *hits != 2 {
		t.Fatalf("expired entry should miss; handler ran %d times", *hits)
	}
}
