// Package httpclient provides the HTTP client used to download remote rule files.
// It offers a retryable HTTP client with default headers and proxy configuration.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// MaxDownloadSize caps the size of a downloaded rules document.
const MaxDownloadSize = 5 * 1024 * 1024

// ignoreProxy controls whether the HTTP_PROXY environment variable should be ignored.
// Uses atomic operations for thread-safe access.
var ignoreProxy atomic.Bool

// SetIgnoreProxy sets whether to ignore the HTTP_PROXY environment variable.
func SetIgnoreProxy(ignore bool) {
	ignoreProxy.Store(ignore)
}

// HeaderRoundTripper is an http.RoundTripper that adds default headers to requests.
// Headers are only added if they're not already present in the request.
type HeaderRoundTripper struct {
	Headers map[string]string
	Next    http.RoundTripper
}

// RoundTrip adds default headers when they're not present on the request
// and delegates to the next RoundTripper.
func (hrt *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if hrt.Next == nil {
		return nil, http.ErrNotSupported
	}

	if hrt.Headers != nil {
		for k, v := range hrt.Headers {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}
	}

	return hrt.Next.RoundTrip(req)
}

// NewClient creates a retryable HTTP client that retries 429 and 5xx responses
// (except 501) and honours HTTP_PROXY unless SetIgnoreProxy(true) was called.
func NewClient(defaultHeaders map[string]string) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3

	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx != nil && ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err != nil {
			log.Debug().Err(err).Msg("Retrying HTTP request, error occurred")
			return true, nil
		}

		if resp == nil {
			return false, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented) {
			url := ""
			if resp.Request != nil && resp.Request.URL != nil {
				url = resp.Request.URL.String()
			}
			log.Trace().Str("url", url).Int("statusCode", resp.StatusCode).Msg("Retrying HTTP request")
			return true, nil
		}

		return false, nil
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil

	if !ignoreProxy.Load() {
		proxyServer, useHttpProxy := os.LookupEnv("HTTP_PROXY")
		if useHttpProxy && proxyServer != "" {
			proxyUrl, err := url.Parse(proxyServer)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy URL in HTTP_PROXY: %w", err)
			}
			log.Debug().Str("proxy", proxyUrl.String()).Msg("Using HTTP_PROXY")
			tr.Proxy = http.ProxyURL(proxyUrl)
		}
	}

	client.HTTPClient.Transport = &HeaderRoundTripper{Headers: defaultHeaders, Next: tr}
	return client, nil
}

// Download fetches url and returns at most MaxDownloadSize bytes of the body.
// Any status other than 200 is an error.
func Download(ctx context.Context, client *retryablehttp.Client, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(body) > MaxDownloadSize {
		return nil, fmt.Errorf("downloading %s: document larger than %d bytes", url, MaxDownloadSize)
	}

	return body, nil
}
