package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/pixquery/pixquery/internal/config"
	"github.com/pixquery/pixquery/internal/metrics"
	"github.com/pixquery/pixquery/photosearch"
	"github.com/pixquery/pixquery/photosearch/mock"
)

// promauto registers against the global registry, so the test metrics are
// created once for the package.
var testMetrics = metrics.New()

func newTestServer(searcher photosearch.Searcher) *Server {
	searchers := map[string]photosearch.Searcher{
		config.ProviderMock: searcher,
	}
	keyFor := func(provider string) (string, error) {
		return "mock-access-key-0000000000", nil
	}
	return New(searchers, keyFor, config.ProviderMock, testMetrics, zap.NewNop())
}

func doSearch(t *testing.T, s *Server, target string) (int, Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v (body %q)", err, rec.Body.String())
	}
	return rec.Code, env
}

func TestServer_Search_Success(t *testing.T) {
	s := newTestServer(mock.New().WithURLs([]string{
		"https://img.test/a",
		"https://img.test/b",
	}))

	code, env := doSearch(t, s, "/search?query=mountains&count=2")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !env.Success {
		t.Errorf("Success = false, error %q", env.Error)
	}
	if env.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", env.StatusCode)
	}
	if len(env.Data) != 2 {
		t.Errorf("len(Data) = %d, want 2", len(env.Data))
	}
	if env.Error != "" {
		t.Errorf("Error = %q, want empty", env.Error)
	}
}

func TestServer_Search_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		searcher   photosearch.Searcher
		target     string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing query",
			searcher:   mock.New().WithURLs([]string{"a"}),
			target:     "/search",
			wantStatus: http.StatusBadRequest,
			wantError:  string(photosearch.KindMissingQuery),
		},
		{
			name:       "non-integer count",
			searcher:   mock.New().WithURLs([]string{"a"}),
			target:     "/search?query=cats&count=many",
			wantStatus: http.StatusBadRequest,
			wantError:  string(photosearch.KindInvalidCount),
		},
		{
			name:       "count out of range",
			searcher:   mock.New().WithURLs([]string{"a"}),
			target:     "/search?query=cats&count=99",
			wantStatus: http.StatusBadRequest,
			wantError:  string(photosearch.KindInvalidCount),
		},
		{
			name:       "no results",
			searcher:   mock.New(),
			target:     "/search?query=cats",
			wantStatus: http.StatusNotFound,
			wantError:  string(photosearch.KindNoResultsFound),
		},
		{
			name: "rate limited upstream",
			searcher: mock.New().WithURLs([]string{"a"}).WithError(&photosearch.Error{
				Kind:       photosearch.KindRateLimitExceeded,
				Message:    "rate limit exceeded",
				StatusCode: http.StatusTooManyRequests,
			}),
			target:     "/search?query=cats",
			wantStatus: http.StatusTooManyRequests,
			wantError:  string(photosearch.KindRateLimitExceeded),
		},
		{
			name:       "unknown provider",
			searcher:   mock.New().WithURLs([]string{"a"}),
			target:     "/search?query=cats&provider=shutterstock",
			wantStatus: http.StatusBadRequest,
			wantError:  string(photosearch.KindAPIError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.searcher)

			code, env := doSearch(t, s, tt.target)

			if code != tt.wantStatus {
				t.Errorf("status = %d, want %d", code, tt.wantStatus)
			}
			if env.Success {
				t.Error("Success = true, want false")
			}
			if env.StatusCode != tt.wantStatus {
				t.Errorf("envelope StatusCode = %d, want %d", env.StatusCode, tt.wantStatus)
			}
			if env.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", env.Error, tt.wantError)
			}
			if len(env.Data) != 0 {
				t.Errorf("Data = %v, want empty on failure", env.Data)
			}
		})
	}
}

func TestServer_Search_PassesOptionsThrough(t *testing.T) {
	m := mock.New().WithURLs([]string{"a", "b", "c"})
	s := newTestServer(m)

	code, _ := doSearch(t, s, "/search?query=city+lights&count=3&orientation=portrait&size=thumb")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	if m.LastQuery != "city lights" {
		t.Errorf("LastQuery = %q", m.LastQuery)
	}
	if m.LastOptions.Count != 3 {
		t.Errorf("Count = %d, want 3", m.LastOptions.Count)
	}
	if m.LastOptions.Orientation != photosearch.OrientationPortrait {
		t.Errorf("Orientation = %v, want portrait", m.LastOptions.Orientation)
	}
	if m.LastOptions.Size != photosearch.SizeThumb {
		t.Errorf("Size = %v, want thumb", m.LastOptions.Size)
	}
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(mock.New())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
