// Package remote implements the conditional-fetch HTTPS client that polls
// the remote policy document, grounded on
// original_source/src-tauri/src/agent/poller.rs's GitHubPoller.
package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/emosenkis/family-policy/internal/apperr"
)

const requestTimeout = 30 * time.Second

// FetchResult is the outcome of one conditional fetch.
type FetchResult struct {
	// NotModified is true when the server returned 304.
	NotModified bool
	// Content is the response body, populated only when NotModified is false.
	Content []byte
	// ETag is the response's ETag header, if any.
	ETag string
}

// Client issues conditional GETs against a single HTTPS policy URL.
type Client struct {
	httpClient  *http.Client
	policyURL   string
	accessToken string
}

func userAgent() string {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	return fmt.Sprintf("family-policy-agent/%s", version)
}

// New builds a Client targeting policyURL. It rejects any URL whose scheme
// is not https, failing fast at construction per spec.md §4.1.
func New(policyURL, accessToken string) (*Client, error) {
	u, err := url.Parse(policyURL)
	if err != nil {
		return nil, apperr.New(apperr.KindConfigInvalid, "invalid policy URL", err)
	}
	if u.Scheme != "https" {
		return nil, apperr.New(apperr.KindConfigInvalid,
			fmt.Sprintf("policy URL must use HTTPS for security (got: %s)", u.Scheme), nil)
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if req.URL.Scheme != "https" {
				return fmt.Errorf("refusing to follow non-HTTPS redirect to %s", req.URL)
			}
			return nil
		},
	}

	return &Client{httpClient: httpClient, policyURL: policyURL, accessToken: accessToken}, nil
}

// Fetch issues a conditional GET, sending If-None-Match when etag is
// non-empty. It classifies the response per spec.md §4.1's status-code
// table.
func (c *Client) Fetch(ctx context.Context, etag string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.policyURL, nil)
	if err != nil {
		return nil, apperr.New(apperr.KindRemoteTransient, "building request", err)
	}
	req.Header.Set("User-Agent", userAgent())
	if c.accessToken != "" {
		req.Header.Set("Authorization", "token "+c.accessToken)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.KindRemoteTransient, "connecting to remote policy source", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return &FetchResult{NotModified: true}, nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, apperr.New(apperr.KindRemoteTransient, "reading response body", err)
		}
		return &FetchResult{Content: body, ETag: resp.Header.Get("ETag")}, nil
	case http.StatusNotFound:
		return nil, apperr.New(apperr.KindRemoteNotFound,
			fmt.Sprintf("policy file not found (404) at %s", c.policyURL), nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperr.New(apperr.KindRemotePermanent,
			fmt.Sprintf("access denied (%d) at %s", resp.StatusCode, c.policyURL), nil)
	default:
		return nil, apperr.New(apperr.KindRemoteTransient,
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, c.policyURL), nil)
	}
}
