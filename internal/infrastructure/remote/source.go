package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

// Source fetches a stats document over HTTP(S).
type Source struct {
	url       *url.URL
	client    *http.Client
	cacheBust bool
	now       func() time.Time
}

type Option func(*Source)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithCacheBusting appends a t=<unix millis> query parameter to every
// request so intermediate caches never serve a stale document.
func WithCacheBusting() Option {
	return func(s *Source) { s.cacheBust = true }
}

func New(rawURL string, timeout time.Duration, opts ...Option) (*Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", rawURL)
	}
	s := &Source{url: u, client: &http.Client{Timeout: timeout}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Source) Name() string { return s.url.String() }

func (s *Source) Load(ctx context.Context) (*domain.ClusterSnapshot, error) {
	u := *s.url
	if s.cacheBust {
		q := u.Query()
		q.Set("t", strconv.FormatInt(s.now().UnixMilli(), 10))
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("loading remote data: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loading remote data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("loading remote data: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	snap, err := domain.DecodeSnapshot(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("loading remote data: %w", err)
	}
	log.WithFields(log.Fields{"url": s.url.String(), "nodes": len(snap.Nodes())}).Debug("snapshot fetched")
	return snap, nil
}
