// Package mock provides an in-memory photosearch.Searcher for tests and
// local development.
package mock

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pixquery/pixquery/photosearch"
)

type Client struct {
	URLs  []string
	Error error
	Delay time.Duration

	CallCount     int
	LastQuery     string
	LastAccessKey string
	LastOptions   photosearch.Options
	AllQueries    []string

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithURLs(urls []string) *Client {
	c.URLs = urls
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

// Search validates input exactly like the real providers, records the call,
// and serves the configured URLs or error.
func (c *Client) Search(ctx context.Context, query, accessKey string, opts photosearch.Options) (*photosearch.ResultSet, error) {
	query, accessKey, opts, err := photosearch.ValidateRequest(query, accessKey, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.CallCount++
	c.LastQuery = query
	c.LastAccessKey = accessKey
	c.LastOptions = opts
	c.AllQueries = append(c.AllQueries, query)
	delay := c.Delay
	forcedErr := c.Error
	urls := c.URLs
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if forcedErr != nil {
		return nil, forcedErr
	}

	if len(urls) == 0 {
		return nil, &photosearch.Error{
			Kind:       photosearch.KindNoResultsFound,
			Message:    fmt.Sprintf("no results found for %q", query),
			StatusCode: http.StatusNotFound,
		}
	}

	if len(urls) > opts.Count {
		urls = urls[:opts.Count]
	}
	return photosearch.NewResultSet(urls), nil
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastQuery = ""
	c.LastAccessKey = ""
	c.LastOptions = photosearch.Options{}
	c.AllQueries = nil
}
