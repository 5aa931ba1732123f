// Package server exposes the photo search library over HTTP as a thin proxy.
// Unlike the library surface, which returns errors, this surface answers
// every request with a uniform JSON envelope.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pixquery/pixquery/internal/metrics"
	"github.com/pixquery/pixquery/photosearch"
)

// KeyFunc resolves the credential for a provider name. The server never
// reads the environment itself; config hands it a resolver.
type KeyFunc func(provider string) (string, error)

type Server struct {
	echo            *echo.Echo
	searchers       map[string]photosearch.Searcher
	keyFor          KeyFunc
	defaultProvider string
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// Envelope is the uniform response shape for /search: success with data, or
// failure with the error kind and message. StatusCode always mirrors the
// HTTP status the envelope is served with.
type Envelope struct {
	Success    bool     `json:"success"`
	Data       []string `json:"data,omitempty"`
	Error      string   `json:"error,omitempty"`
	Message    string   `json:"message,omitempty"`
	StatusCode int      `json:"status_code"`
}

func New(searchers map[string]photosearch.Searcher, keyFor KeyFunc, defaultProvider string, m *metrics.Metrics, logger *zap.Logger) *Server {
	s := &Server{
		searchers:       searchers,
		keyFor:          keyFor,
		defaultProvider: defaultProvider,
		metrics:         m,
		logger:          logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogError:   true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
			} else {
				logger.Info("request completed", fields...)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/search", s.handleSearch)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	s.echo = e
	return s
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(c echo.Context) error {
	s.metrics.ProxyRequestsInFlight.Inc()
	defer s.metrics.ProxyRequestsInFlight.Dec()

	provider := c.QueryParam("provider")
	if provider == "" {
		provider = s.defaultProvider
	}
	searcher, ok := s.searchers[provider]
	if !ok {
		return s.fail(c, "search", &photosearch.Error{
			Kind:       photosearch.KindAPIError,
			Message:    "unknown provider " + strconv.Quote(provider),
			StatusCode: http.StatusBadRequest,
		})
	}

	opts := photosearch.Options{
		Orientation: photosearch.Orientation(c.QueryParam("orientation")),
		Size:        photosearch.Size(c.QueryParam("size")),
	}
	if raw := c.QueryParam("count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return s.fail(c, "search", &photosearch.Error{
				Kind:       photosearch.KindInvalidCount,
				Message:    "count must be an integer, got " + strconv.Quote(raw),
				StatusCode: http.StatusBadRequest,
			})
		}
		opts.Count = count
	}

	accessKey, err := s.keyFor(provider)
	if err != nil {
		return s.fail(c, "search", &photosearch.Error{
			Kind:       photosearch.KindMissingAccessKey,
			Message:    err.Error(),
			StatusCode: http.StatusBadRequest,
		})
	}

	start := time.Now()
	results, err := searcher.Search(c.Request().Context(), c.QueryParam("query"), accessKey, opts)
	if err != nil {
		s.metrics.RecordSearch(provider, string(photosearch.KindOf(err)), time.Since(start))
		return s.fail(c, "search", err)
	}
	s.metrics.RecordSearch(provider, "ok", time.Since(start))
	s.metrics.RecordProxyRequest("search", "200")

	return c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       results.All(),
		StatusCode: http.StatusOK,
	})
}

func (s *Server) fail(c echo.Context, route string, err error) error {
	status := photosearch.StatusOf(err)
	s.metrics.RecordProxyRequest(route, strconv.Itoa(status))
	return c.JSON(status, Envelope{
		Success:    false,
		Error:      string(photosearch.KindOf(err)),
		Message:    err.Error(),
		StatusCode: status,
	})
}
