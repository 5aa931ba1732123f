// Package unsplash implements photosearch.Searcher against the Unsplash
// photo search API.
package unsplash

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
	defaultBaseURL = "https://api.unsplash.com"
	searchPath     = "/search/photos"

	// acceptVersion pins the API version header the endpoint expects.
	acceptVersion = "v1"
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
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	// Pointer so a body with no results key at all is distinguishable
	// from a genuinely empty result list.
	Results *[]photoRecord `json:"results"`
}

type photoRecord struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	URLs        photoURLs `json:"urls"`
}

type photoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

func (u photoURLs) at(size photosearch.Size) string {
	switch size {
	case photosearch.SizeRaw:
		return u.Raw
	case photosearch.SizeFull:
		return u.Full
	case photosearch.SizeRegular:
		return u.Regular
	case photosearch.SizeSmall:
		return u.Small
	case photosearch.SizeThumb:
		return u.Thumb
	}
	return ""
}

// fallbackOrder is tried, minus the requested size, when a record lacks a
// URL at the requested tier.
var fallbackOrder = []photosearch.Size{
	photosearch.SizeRegular,
	photosearch.SizeSmall,
	photosearch.SizeThumb,
	photosearch.SizeFull,
	photosearch.SizeRaw,
}

// bestURL picks the URL at the requested size, falling back through the
// remaining tiers. Returns "" when the record has no usable URL at all.
func (u photoURLs) bestURL(size photosearch.Size) string {
	if v := u.at(size); v != "" {
		return v
	}
	for _, s := range fallbackOrder {
		if s == size {
			continue
		}
		if v := u.at(s); v != "" {
			return v
		}
	}
	return ""
}

// Search issues exactly one GET against the search endpoint. Input is
// validated before anything touches the network; all failures come back as
// *photosearch.Error.
func (c *Client) Search(ctx context.Context, query, accessKey string, opts photosearch.Options) (*photosearch.ResultSet, error) {
	query, accessKey, opts, err := photosearch.ValidateRequest(query, accessKey, opts)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(opts.Count))
	params.Set("client_id", accessKey)
	if opts.Orientation != "" {
		params.Set("orientation", string(opts.Orientation))
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
	httpReq.Header.Set("Accept-Version", acceptVersion)
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
		c.logger.Warn("unsplash search rejected",
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
	if sr.Results == nil {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    "malformed search response: missing results list",
			StatusCode: http.StatusBadGateway,
		}
	}

	records := *sr.Results
	if len(records) == 0 {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindNoResultsFound,
			Message:    fmt.Sprintf("no results found for %q", query),
			StatusCode: http.StatusNotFound,
		}
	}

	urls := make([]string, 0, len(records))
	for _, rec := range records {
		if u := rec.URLs.bestURL(opts.Size); u != "" {
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

	c.logger.Debug("unsplash search ok",
		zap.String("query", query),
		zap.Int("results", len(urls)),
	)
	return photosearch.NewResultSet(urls), nil
}

func checkStatus(code int, status string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return &photosearch.Error{
			Kind:       photosearch.KindInvalidAccessKey,
			Message:    "access key rejected by the API",
			StatusCode: http.StatusUnauthorized,
		}
	case code == http.StatusForbidden:
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
