package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

const proxyPrefix = "/api/openlibrary/"

// CatalogProxy is a [Handler] that forwards catalog requests to the Open
// Library origin.
//
// /api/openlibrary/search.json?q=dune becomes {origin}/search.json?q=dune.
type CatalogProxy struct {
	origin *url.URL
	proxy  *httputil.ReverseProxy
	logger *log.Logger
}

// NewCatalogProxy creates a CatalogProxy forwarding to origin, e.g.
// https://openlibrary.org.
func NewCatalogProxy(origin string, logger *log.Logger) (*CatalogProxy, error) {
	target, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid proxy origin %q: %v", shared.ErrInvalidConfig, origin, err)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	p := &CatalogProxy{origin: target, logger: logger}
	p.proxy = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.URL.Path = strings.TrimPrefix(r.In.URL.Path, strings.TrimSuffix(proxyPrefix, "/"))
			r.Out.Host = target.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.logger.Warn("catalog proxy failed", "path", r.URL.Path, "error", err)
			http.Error(w, "catalog unavailable", http.StatusBadGateway)
		},
	}

	return p, nil
}

// ServeHTTP implements [http.Handler].
func (p *CatalogProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, proxyPrefix) {
		http.NotFound(w, r)
		return
	}
	p.proxy.ServeHTTP(w, r)
}

// Routes implements [Handler].
func (p *CatalogProxy) Routes() []string {
	return []string{proxyPrefix}
}

// LoggingMiddleware logs each request with its duration.
func LoggingMiddleware(logger *log.Logger) Middleware {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
