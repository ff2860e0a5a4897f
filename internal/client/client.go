package client

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
)

// CreateOptimizedTransport returns a transport with a bounded connection pool
// for calls to a single upstream host.
func CreateOptimizedTransport(insecureSkipVerify bool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: time.Second,
		// #nosec G402 -- InsecureSkipVerify is user-configurable for development/testing
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		},
	}
}

// NewProviderClient creates the HTTP client used for identity provider calls.
// Every request is bounded by timeout and is never retried.
func NewProviderClient(timeout time.Duration, insecureSkipVerify bool) (*http.Client, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("provider timeout must be positive, got %s", timeout)
	}

	httpClient, err := httpclient.NewClient(
		httpclient.WithTimeout(timeout),
		httpclient.WithTransport(CreateOptimizedTransport(insecureSkipVerify)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider HTTP client: %w", err)
	}
	return httpClient, nil
}
