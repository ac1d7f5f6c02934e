// Package network provides the HTTP client shared by segment providers and the update check.
package network

import (
	"net/http"
	"time"

	"github.com/anisan-cli/skipsync/constant"
)

// Client identifies itself with constant.UserAgent. Segment lookups race playback, so
// timeouts are short.
var Client = &http.Client{
	Timeout:   10 * time.Second,
	Transport: &userAgent{next: newTransport()},
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 5 * time.Second
	return t
}

type userAgent struct {
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.next.RoundTrip(req)
}
