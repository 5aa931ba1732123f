// Package download fetches search result URLs to local files with bounded
// concurrency.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pixquery/pixquery/internal/metrics"
)

const defaultConcurrency = 4

type Downloader struct {
	client      *http.Client
	logger      *zap.Logger
	metrics     *metrics.Metrics
	concurrency int
}

func New(logger *zap.Logger, m *metrics.Metrics, concurrency int) *Downloader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Downloader{
		client:      &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
		metrics:     m,
		concurrency: concurrency,
	}
}

// Fetch downloads every URL into dir, naming files image001.jpg,
// image002.jpg, ... in result order. One failed download fails the batch.
// Returns the written paths in the same order as urls.
func (d *Downloader) Fetch(ctx context.Context, urls []string, dir string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	paths := make([]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			dest := filepath.Join(dir, fmt.Sprintf("image%03d%s", i+1, extension(u)))
			if err := d.fetchOne(ctx, u, dest); err != nil {
				d.metrics.RecordDownload("error")
				d.logger.Warn("download failed",
					zap.Error(err),
					zap.String("url", u),
				)
				return fmt.Errorf("download %s: %w", u, err)
			}
			d.metrics.RecordDownload("ok")
			paths[i] = dest
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (d *Downloader) fetchOne(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	file, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(dest)
		return err
	}
	return file.Close()
}

// extension guesses a file extension from the URL path, defaulting to .jpg
// since the photo APIs serve JPEG unless the path says otherwise.
func extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	switch ext := path.Ext(u.Path); ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ".jpg"
}
