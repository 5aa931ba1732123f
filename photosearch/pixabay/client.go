// Package pixabay implements photosearch.Searcher against the Pixabay image
// API. Pixabay authenticates through a query parameter and reports bad keys
// as HTTP 400, so the status mapping differs slightly from the other
// providers.
package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pixquery/pixquery/photosearch"
)

const (
	defaultBaseURL = "https://pixabay.com"
	searchPath     = "/api/"
)

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

type searchResponse struct {
	Total     int          `json:"total"`
	TotalHits int          `json:"totalHits"`
	Hits      *[]hitRecord `json:"hits"`
}

type hitRecord struct {
	ID            int    `json:"id"`
	Tags          string `json:"tags"`
	User          string `json:"user"`
	PreviewURL    string `json:"previewURL"`
	WebFormatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	ImageURL      string `json:"imageURL"`
}

// at maps the five neutral tiers onto Pixabay's URL fields. ImageURL is only
// present for full-API keys, which is why the fallback chain matters here.
func (h hitRecord) at(size photosearch.Size) string {
	switch size {
	case photosearch.SizeRaw:
		return h.ImageURL
	case photosearch.SizeFull:
		return h.LargeImageURL
	case photosearch.SizeRegular:
		return h.WebFormatURL
	case photosearch.SizeSmall:
		return h.WebFormatURL
	case photosearch.SizeThumb:
		return h.PreviewURL
	}
	return ""
}

var fallbackOrder = []photosearch.Size{
	photosearch.SizeRegular,
	photosearch.SizeSmall,
	photosearch.SizeThumb,
	photosearch.SizeFull,
	photosearch.SizeRaw,
}

func (h hitRecord) bestURL(size photosearch.Size) string {
	if v := h.at(size); v != "" {
		return v
	}
	for _, tier := range fallbackOrder {
		if tier == size {
			continue
		}
		if v := h.at(tier); v != "" {
			return v
		}
	}
	return ""
}

// orientationParam translates the neutral orientation values into Pixabay's
// horizontal/vertical vocabulary. Pixabay has no square filter, so squarish
// degrades to no filter.
func orientationParam(o photosearch.Orientation) string {
	switch o {
	case photosearch.OrientationLandscape:
		return "horizontal"
	case photosearch.OrientationPortrait:
		return "vertical"
	}
	return ""
}

func (c *Client) Search(ctx context.Context, query, accessKey string, opts photosearch.Options) (*photosearch.ResultSet, error) {
	query, accessKey, opts, err := photosearch.ValidateRequest(query, accessKey, opts)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("key", accessKey)
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(opts.Count))
	params.Set("image_type", "photo")
	if o := orientationParam(opts.Orientation); o != "" {
		params.Set("orientation", o)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindUnknownError,
			Message:    "failed to build search request",
			StatusCode: http.StatusInternalServerError,
			Err:        err,
		}
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindNetworkError,
			Message:    "search request failed",
			StatusCode: http.StatusBadGateway,
			Err:        err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindNetworkError,
			Message:    "failed to read response body",
			StatusCode: http.StatusBadGateway,
			Err:        err,
		}
	}

	if err := checkStatus(resp.StatusCode, resp.Status); err != nil {
		c.logger.Warn("pixabay search rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query),
		)
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    "failed to parse search response",
			StatusCode: http.StatusBadGateway,
			Err:        err,
		}
	}
	if sr.Hits == nil {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    "malformed search response: missing hits list",
			StatusCode: http.StatusBadGateway,
		}
	}

	records := *sr.Hits
	if len(records) == 0 {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindNoResultsFound,
			Message:    fmt.Sprintf("no results found for %q", query),
			StatusCode: http.StatusNotFound,
		}
	}

	urls := make([]string, 0, len(records))
	for _, rec := range records {
		if u := rec.bestURL(opts.Size); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    "search response contained no usable image URLs",
			StatusCode: http.StatusBadGateway,
		}
	}

	c.logger.Debug("pixabay search ok",
		zap.String("query", query),
		zap.Int("results", len(urls)),
	)
	return photosearch.NewResultSet(urls), nil
}

func checkStatus(code int, status string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	// Pixabay answers 400 for an unknown key and has no separate 401.
	case code == http.StatusBadRequest, code == http.StatusUnauthorized:
		return &photosearch.Error{
			Kind:       photosearch.KindInvalidAccessKey,
			Message:    "access key rejected by the API",
			StatusCode: http.StatusUnauthorized,
		}
	case code == http.StatusForbidden, code == http.StatusTooManyRequests:
		return &photosearch.Error{
			Kind:       photosearch.KindRateLimitExceeded,
			Message:    "rate limit exceeded",
			StatusCode: http.StatusTooManyRequests,
		}
	case code == http.StatusNotFound:
		return &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    "search endpoint not found",
			StatusCode: http.StatusNotFound,
		}
	default:
		return &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    fmt.Sprintf("unexpected response: %s", status),
			StatusCode: code,
		}
	}
}
