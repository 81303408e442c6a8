package httpx

import (
	"net"
	"net/http"
	"time"
)

// Pooled client shared by outbound integrations. The mail API is the
// only consumer today, hence the small per-host pool.
var defaultClient = New(15 * time.Second)

func Client() *http.Client { return defaultClient }

// New builds a client with the given overall request timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        20,
			MaxConnsPerHost:     10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
