package video

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domerrors "github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/fetch"
)

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewSearcher(fetch.NewClient(5*time.Second, 0), "test-key")
	s.endpoint = srv.URL
	return s
}

func TestSearchReturnsWatchURL(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "funny cat videos" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("maxResults") != "1" || q.Get("part") != "snippet" || q.Get("key") != "test-key" {
			t.Errorf("unexpected query params: %v", q)
		}
		fmt.Fprint(w, `{"items":[{"id":{"videoId":"dQw4w9WgXcQ"}}]}`)
	})

	got, err := s.Search(context.Background(), "funny cat videos")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"; got != want {
		t.Errorf("Search = %q, want %q", got, want)
	}
}

func TestSearchNoResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"Empty items", `{"items":[]}`},
		{"Missing videoId", `{"items":[{"id":{}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			_, err := s.Search(context.Background(), "obscure query")
			if !errors.Is(err, domerrors.ErrNoData) {
				t.Errorf("err = %v, want ErrNoData", err)
			}
		})
	}
}

func TestSearchAPIError(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := s.Search(context.Background(), "anything")
	var fetchErr *domerrors.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want a FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", fetchErr.StatusCode)
	}
}
