// Package blob uploads evidence documents to the external object store
// and hands back their public URLs.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUploadFailed marks a rejected or failed object upload.
var ErrUploadFailed = errors.New("blob upload failed")

// Store puts an object and returns the URL it is served from.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// HTTPStore talks to an S3-compatible object endpoint with bearer auth.
type HTTPStore struct {
	endpoint   string
	token      string
	publicBase string
	httpClient *http.Client
}

// NewHTTPStore creates a store client. publicBase is the base URL objects
// are publicly served from; when empty the endpoint itself is used.
func NewHTTPStore(endpoint, token, publicBase string) *HTTPStore {
	if publicBase == "" {
		publicBase = endpoint
	}
	return &HTTPStore{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		publicBase: strings.TrimRight(publicBase, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Put uploads the object under name and returns its public URL.
func (s *HTTPStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	target := s.endpoint + "/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, body)
	}

	return s.publicBase + "/" + url.PathEscape(name), nil
}
