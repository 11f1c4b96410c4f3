package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNetwork marks any fetch failure: connect error, timeout, non-2xx.
// One attempt only; a failed fetch aborts the run upstream.
var ErrNetwork = errors.New("network error")

type Fetcher struct {
	hc      *http.Client
	limiter *HostLimiter
}

func New(timeout time.Duration, limiter *HostLimiter) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Fetch GETs url with the given headers and returns the raw body.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, url); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %v", ErrNetwork, err)
		}
	}

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrNetwork, url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrNetwork, url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	return body, nil
}
