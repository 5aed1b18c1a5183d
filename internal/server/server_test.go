package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestBasicRouter(t *testing.T) {
	t.Run("method enforcement", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("GET should succeed: %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST should be rejected, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		router := NewBasicRouter()
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		router.Use(mark("first"), mark("second"))
		router.Handle("", "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected middleware order: %v", order)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("state mismatch", func(t *testing.T) {
		h := NewOAuthHandler(testOAuthConfig(""), "expected-state")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if result.Error() == nil {
			t.Error("expected an error result")
		}
	})

	t.Run("missing code", func(t *testing.T) {
		h := NewOAuthHandler(testOAuthConfig(""), "s")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected an error result")
		}
	})

	t.Run("successful exchange", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`)
		}))
		defer tokenServer.Close()

		h := NewOAuthHandler(testOAuthConfig(tokenServer.URL), "s")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=auth-code", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Strava Connected") {
			t.Error("expected success page")
		}

		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "fresh" {
			t.Errorf("unexpected token: %+v", result.Token)
		}

		// Second hit is rejected
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=again", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("repeat callback should be rejected, got %d", rec.Code)
		}
	})
}

func TestStaticHandler(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>viewer</html>"), 0644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}
	dataPath := filepath.Join(t.TempDir(), "data.json")

	h := NewStaticHandler(dir, dataPath)

	t.Run("serves assets", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "viewer") {
			t.Errorf("asset not served: %d", rec.Code)
		}
		if rec.Header().Get("Cache-Control") != "no-store" {
			t.Error("caching should be disabled")
		}
	})

	t.Run("missing report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data.json", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 before report exists, got %d", rec.Code)
		}
	})

	t.Run("serves report from data path", func(t *testing.T) {
		if err := os.WriteFile(dataPath, []byte(`{"watch_albums":[]}`), 0644); err != nil {
			t.Fatalf("failed to write report: %v", err)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data.json", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "watch_albums") {
			t.Errorf("report not served: %d %q", rec.Code, rec.Body.String())
		}
	})
}

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/callback",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}
