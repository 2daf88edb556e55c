package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-videoquote/internal/resilience"
)

const (
	maxPageBytes = 2 << 20
	userAgent    = "Mozilla/5.0 (compatible; VideoQuoteBot/1.0)"
)

// ErrBlockedAddress is returned when a site resolves to a non-public address.
var ErrBlockedAddress = errors.New("analyzer: address not allowed")

// Fetcher downloads a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher downloads pages through the resilient HTTP client.
type HTTPFetcher struct {
	HTTP resilience.HTTPClient
}

// NewHTTPFetcher builds a fetcher that refuses private, loopback and
// link-local destinations unless allowPrivate is set.
func NewHTTPFetcher(timeout time.Duration, allowPrivate bool) HTTPFetcher {
	hc := resilience.NewHTTPClient("website", timeout, 2)
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	if !allowPrivate {
		dialer.Control = publicOnly
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	hc.Client = &http.Client{
		Transport: otelhttp.NewTransport(transport),
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("analyzer: too many redirects")
			}
			return nil
		},
	}
	return HTTPFetcher{HTTP: hc}
}

// Fetch implements Fetcher.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.HTTP.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("analyzer: %s responded %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return ErrBlockedAddress
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() || ip.IsMulticast() {
		return ErrBlockedAddress
	}
	return nil
}
