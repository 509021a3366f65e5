package readiness

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPProber issues a GET against a service's readiness endpoint and expects
// a 2xx reply. Qdrant (/readyz), MinIO (/minio/health/ready) and Ollama
// (/api/version) all expose one.
type HTTPProber struct {
	// URL is the full readiness endpoint URL.
	URL string

	client *http.Client
}

// NewHTTPProber constructs a prober for the given endpoint. The underlying
// client never retries on its own; the readiness wait loop owns retrying.
func NewHTTPProber(url string) *HTTPProber {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	rc.HTTPClient.Timeout = 10 * time.Second
	return &HTTPProber{URL: url, client: rc.StandardClient()}
}

// Probe performs the GET and maps any non-2xx status to an error.
func (p *HTTPProber) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", p.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", p.URL, resp.StatusCode)
	}
	return nil
}
