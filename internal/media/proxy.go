package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/objectstore"
	"github.com/go-resty/resty/v2"
)

const proxyTimeout = 15 * time.Second

// Proxy fetches images server side so browsers can read them without
// tripping over the bucket's CORS policy.
type Proxy struct {
	store objectstore.Store
	http  *resty.Client
}

func NewProxy(store objectstore.Store, timeout time.Duration) *Proxy {
	if timeout <= 0 {
		timeout = proxyTimeout
	}
	return &Proxy{
		store: store,
		http: resty.New().
			SetTimeout(timeout).
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)),
	}
}

// Fetched is an upstream response body and the headers worth passing on.
// The caller closes Body.
type Fetched struct {
	Body         io.ReadCloser
	ContentType  string
	CacheControl string
}

// Target picks the upstream URL: a storage key goes through the bucket's
// public URL, otherwise rawURL is used as given.
func (p *Proxy) Target(key, rawURL string) (string, error) {
	key = strings.TrimSpace(key)
	rawURL = strings.TrimSpace(rawURL)
	switch {
	case key != "":
		if !p.store.Enabled() {
			return "", apperr.Validation("Object storage not enabled")
		}
		return p.store.PublicURL(strings.TrimPrefix(key, "/")), nil
	case rawURL != "":
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", apperr.Validation("url must be an absolute http(s) URL")
		}
		return u.String(), nil
	default:
		return "", apperr.Validation("key or url required")
	}
}

// Fetch opens target. Any transport failure or non-2xx answer is an
// upstream error.
func (p *Proxy) Fetch(ctx context.Context, target string) (*Fetched, error) {
	resp, err := p.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch image", err)
	}
	body := resp.RawBody()
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		body.Close()
		return nil, apperr.Upstream("Failed to fetch image", fmt.Errorf("upstream returned %s", resp.Status()))
	}
	return &Fetched{
		Body:         body,
		ContentType:  resp.Header().Get("Content-Type"),
		CacheControl: resp.Header().Get("Cache-Control"),
	}, nil
}
