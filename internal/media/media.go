package media

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"storefront/internal/metrics"
)

// File is an image waiting to be uploaded.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Uploader stores raw bytes on a media host and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("media uploads are not configured")

// Disabled rejects every upload. It stands in when no media host is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, File) (string, error) {
	return "", ErrNotConfigured
}

// UploadAll uploads files concurrently and returns their URLs in input order.
// On failure the returned slice holds the URLs that did upload, so the caller
// can report them; nothing is rolled back.
func UploadAll(ctx context.Context, u Uploader, files []File) ([]string, error) {
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, f := range files {
		g.Go(func() error {
			url, err := u.Upload(gctx, f)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uploaded := make([]string, 0, len(urls))
		for _, url := range urls {
			if url != "" {
				uploaded = append(uploaded, url)
			}
		}
		return uploaded, err
	}
	return urls, nil
}

type instrumented struct {
	next    Uploader
	metrics *metrics.Metrics
}

// WithMetrics counts every upload attempt by outcome.
func WithMetrics(u Uploader, m *metrics.Metrics) Uploader {
	return &instrumented{next: u, metrics: m}
}

func (i *instrumented) Upload(ctx context.Context, f File) (string, error) {
	url, err := i.next.Upload(ctx, f)
	i.metrics.Upload(err)
	return url, err
}
