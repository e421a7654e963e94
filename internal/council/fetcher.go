// Package council fetches the collection-schedule page from the council API.
package council

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ibs-source/bindicator/internal/config"
	"github.com/ibs-source/bindicator/internal/log"
	"github.com/ibs-source/bindicator/pkg/jsonfast"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Fetcher posts the property UPRN and returns the HTML page the API answers with.
type Fetcher struct {
	url       string
	uprn      int64
	userAgent string
	client    *http.Client
	logger    *log.Logger
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client. Its Timeout is overridden by the configured fetch timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		clone := *c
		f.client = &clone
	}
}

// NewFetcher creates a fetcher for cfg.
func NewFetcher(cfg config.SourceConfig, logger *log.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = log.Discard()
	}
	f := &Fetcher{
		url:       cfg.APIURL,
		uprn:      cfg.UPRN,
		userAgent: cfg.UserAgent,
		client:    &http.Client{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client.Timeout = cfg.FetchTimeout
	return f
}

// RequestBody returns the JSON document sent to the API.
func (f *Fetcher) RequestBody() []byte {
	b := jsonfast.New(32)
	b.BeginObject()
	b.AddInt64Field("UPRN", f.uprn)
	b.EndObject()
	return b.Bytes()
}

// Fetch performs the POST and returns the response body. Any non-2xx status is
// a *FetchError and the body is discarded.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(f.RequestBody()))
	if err != nil {
		return "", &FetchError{URL: f.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/html, */*")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: f.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	fields := logrus.Fields{
		"url":    f.url,
		"uprn":   f.uprn,
		"status": resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		f.logger.WarnWithFields(fields, "Collection page request rejected")
		return "", &FetchError{
			URL:        f.url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: f.url, Err: fmt.Errorf("read body: %w", err)}
	}

	fields["bytes"] = len(body)
	f.logger.DebugWithFields(fields, "Fetched collection page")
	return string(body), nil
}
