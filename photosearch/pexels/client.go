// Package pexels implements photosearch.Searcher against the Pexels photo
// search API. Pexels exposes its own size names; they are mapped onto the
// five photosearch tiers so callers see one vocabulary.
package pexels

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
	defaultBaseURL = "https://api.pexels.com"
	searchPath     = "/v1/search"
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
	TotalResults int            `json:"total_results"`
	Page         int            `json:"page"`
	PerPage      int            `json:"per_page"`
	Photos       *[]photoRecord `json:"photos"`
}

type photoRecord struct {
	ID           int       `json:"id"`
	Alt          string    `json:"alt"`
	Photographer string    `json:"photographer"`
	Src          photoSrcs `json:"src"`
}

type photoSrcs struct {
	Original string `json:"original"`
	Large2x  string `json:"large2x"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
	Small    string `json:"small"`
	Tiny     string `json:"tiny"`
}

// at maps the five neutral tiers onto Pexels src names.
func (s photoSrcs) at(size photosearch.Size) string {
	switch size {
	case photosearch.SizeRaw:
		return s.Original
	case photosearch.SizeFull:
		return s.Large2x
	case photosearch.SizeRegular:
		return s.Large
	case photosearch.SizeSmall:
		return s.Medium
	case photosearch.SizeThumb:
		return s.Tiny
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

func (s photoSrcs) bestURL(size photosearch.Size) string {
	if v := s.at(size); v != "" {
		return v
	}
	for _, tier := range fallbackOrder {
		if tier == size {
			continue
		}
		if v := s.at(tier); v != "" {
			return v
		}
	}
	return ""
}

// orientationParam translates the neutral orientation values into what
// Pexels accepts ("square" rather than "squarish").
func orientationParam(o photosearch.Orientation) string {
	if o == photosearch.OrientationSquarish {
		return "square"
	}
	return string(o)
}

func (c *Client) Search(ctx context.Context, query, accessKey string, opts photosearch.Options) (*photosearch.ResultSet, error) {
	query, accessKey, opts, err := photosearch.ValidateRequest(query, accessKey, opts)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(opts.Count))
	if opts.Orientation != "" {
		params.Set("orientation", orientationParam(opts.Orientation))
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
	httpReq.Header.Set("Authorization", accessKey)
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
		c.logger.Warn("pexels search rejected",
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
	if sr.Photos == nil {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    "malformed search response: missing photos list",
			StatusCode: http.StatusBadGateway,
		}
	}

	records := *sr.Photos
	if len(records) == 0 {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindNoResultsFound,
			Message:    fmt.Sprintf("no results found for %q", query),
			StatusCode: http.StatusNotFound,
		}
	}

	urls := make([]string, 0, len(records))
	for _, rec := range records {
		if u := rec.Src.bestURL(opts.Size); u != "" {
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

	c.logger.Debug("pexels search ok",
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
