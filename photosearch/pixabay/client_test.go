package pixabay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pixquery/pixquery/photosearch"
)

const testKey = "12345678-1234567890abcdef12345678"

func TestClient_Search_TierMapping(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits := []hitRecord{
			{
				ID:            1,
				PreviewURL:    "https://img.test/1-preview",
				WebFormatURL:  "https://img.test/1-web",
				LargeImageURL: "https://img.test/1-large",
				ImageURL:      "https://img.test/1-full",
			},
		}
		json.NewEncoder(w).Encode(searchResponse{Total: 1, TotalHits: 1, Hits: &hits})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Timeout: 5 * time.Second}, logger)

	tests := []struct {
		size photosearch.Size
		want string
	}{
		{photosearch.SizeRaw, "https://img.test/1-full"},
		{photosearch.SizeFull, "https://img.test/1-large"},
		{photosearch.SizeRegular, "https://img.test/1-web"},
		{photosearch.SizeSmall, "https://img.test/1-web"},
		{photosearch.SizeThumb, "https://img.test/1-preview"},
	}

	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			results, err := client.Search(context.Background(), "cats", testKey, photosearch.Options{Size: tt.size})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if got := results.One(); got != tt.want {
				t.Errorf("One() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_Search_QueryParams(t *testing.T) {
	logger := zap.NewNop()

	var gotParams url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParams = r.URL.Query()
		hits := []hitRecord{{ID: 1, WebFormatURL: "https://img.test/1"}}
		json.NewEncoder(w).Encode(searchResponse{Total: 1, TotalHits: 1, Hits: &hits})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, logger)

	_, err := client.Search(context.Background(), "winter forest", testKey, photosearch.Options{
		Count:       7,
		Orientation: photosearch.OrientationLandscape,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got := gotParams.Get("key"); got != testKey {
		t.Errorf("key param = %q", got)
	}
	if got := gotParams.Get("q"); got != "winter forest" {
		t.Errorf("q param = %q", got)
	}
	if got := gotParams.Get("per_page"); got != "7" {
		t.Errorf("per_page param = %q, want 7", got)
	}
	if got := gotParams.Get("orientation"); got != "horizontal" {
		t.Errorf("orientation param = %q, want horizontal", got)
	}
}

func TestClient_Search_PaddedKeySentTrimmed(t *testing.T) {
	logger := zap.NewNop()

	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		hits := []hitRecord{{ID: 1, WebFormatURL: "https://img.test/1"}}
		json.NewEncoder(w).Encode(searchResponse{Total: 1, TotalHits: 1, Hits: &hits})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, logger)

	_, err := client.Search(context.Background(), "cats", "  "+testKey+"  ", photosearch.Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotKey != testKey {
		t.Errorf("key on the wire = %q, want trimmed key", gotKey)
	}
}

func TestClient_Search_SquarishSendsNoOrientation(t *testing.T) {
	logger := zap.NewNop()

	var gotParams url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParams = r.URL.Query()
		hits := []hitRecord{{ID: 1, WebFormatURL: "https://img.test/1"}}
		json.NewEncoder(w).Encode(searchResponse{Total: 1, TotalHits: 1, Hits: &hits})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, logger)

	_, err := client.Search(context.Background(), "cats", testKey, photosearch.Options{
		Orientation: photosearch.OrientationSquarish,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotParams.Has("orientation") {
		t.Errorf("orientation param = %q, want none", gotParams.Get("orientation"))
	}
}

func TestClient_Search_BadRequestIsInvalidKey(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`[ERROR 400] "key" is wrong`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, logger)

	_, err := client.Search(context.Background(), "cats", testKey, photosearch.Options{})
	if got := photosearch.KindOf(err); got != photosearch.KindInvalidAccessKey {
		t.Errorf("Search() kind = %v, want %v", got, photosearch.KindInvalidAccessKey)
	}
	if got := photosearch.StatusOf(err); got != http.StatusUnauthorized {
		t.Errorf("Search() status = %v, want 401", got)
	}
}

func TestClient_Search_EmptyHits(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits := []hitRecord{}
		json.NewEncoder(w).Encode(searchResponse{Total: 0, TotalHits: 0, Hits: &hits})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, logger)

	_, err := client.Search(context.Background(), "nothing here", testKey, photosearch.Options{})
	if got := photosearch.KindOf(err); got != photosearch.KindNoResultsFound {
		t.Errorf("Search() kind = %v, want %v", got, photosearch.KindNoResultsFound)
	}
}
