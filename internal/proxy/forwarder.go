// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

// Package proxy streams GET requests through to the MapServer upstream.
package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/uralgeo/geoportal/internal/config"
	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/metrics"
)

// userAgent identifies the gateway to the upstream in place of the
// client's own User-Agent.
const userAgent = "GeoportalBackendProxy/1.0"

// upstreamErrorMessage is the fixed diagnostic for any upstream
// transport failure. Clients never see upstream addresses or error
// detail.
const upstreamErrorMessage = "Error connecting to MapServer"

// droppedRequestHeaders are hop-by-hop or body-describing headers that
// must not be forwarded on a bodyless GET.
var droppedRequestHeaders = map[string]struct{}{
	"Host":           {},
	"Connection":     {},
	"User-Agent":     {},
	"Content-Length": {},
	"Content-Type":   {},
}

// droppedResponseHeaders describe the upstream's transfer encoding,
// which no longer matches the re-streamed body.
var droppedResponseHeaders = map[string]struct{}{
	"Content-Length":    {},
	"Transfer-Encoding": {},
	"Content-Encoding":  {},
}

// Forwarder relays GET requests to the MapServer upstream over a shared
// pooled client, wrapped in a circuit breaker so a dead upstream fails
// fast instead of tying up handler goroutines.
type Forwarder struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]

	// limiter throttles outbound requests so a burst of tile loads
	// cannot flatten the upstream. Nil when the throttle is disabled.
	limiter *rate.Limiter
}

// NewForwarder builds a forwarder from validated MapServer
// configuration.
func NewForwarder(cfg *config.MapServerConfig) *Forwarder {
	settings := gobreaker.Settings{
		Name:    "mapserver",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
		// Clients abort tile loads constantly while panning; a canceled
		// inbound request says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	var limiter *rate.Limiter
	if cfg.UpstreamRPS > 0 {
		burst := cfg.UpstreamBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), burst)
	}

	return &Forwarder{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		limiter: limiter,
	}
}

// ServeHTTP forwards the request to the upstream and streams the
// response back. The upstream path comes from the chi wildcard; the
// query string passes through verbatim. Upstream HTTP errors, 5xx
// included, stream back unchanged; only transport failures map to 502.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodGet {
		metrics.RecordProxyRequest("rejected", time.Since(start).Seconds())
		w.Header().Set("Allow", http.MethodGet)
		writeProxyError(w, http.StatusMethodNotAllowed, "Only GET requests are supported")
		return
	}

	target := f.baseURL + "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		metrics.RecordProxyRequest("rejected", time.Since(start).Seconds())
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to build upstream request")
		writeProxyError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	copyRequestHeaders(req, r)

	if f.limiter != nil {
		if err := f.limiter.Wait(r.Context()); err != nil {
			// Client gave up while queued for an upstream slot.
			metrics.RecordProxyRequest("rejected", time.Since(start).Seconds())
			return
		}
	}

	resp, err := f.breaker.Execute(func() (*http.Response, error) {
		return f.client.Do(req)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away mid-request; nobody is reading the
			// response.
			metrics.RecordProxyRequest("canceled", time.Since(start).Seconds())
			return
		}
		outcome, status, message := classifyUpstreamError(err)
		metrics.RecordProxyRequest(outcome, time.Since(start).Seconds())
		logging.Ctx(r.Context()).Error().Err(err).Str("target", target).
			Msg("MapServer request failed")
		writeProxyError(w, status, message)
		return
	}
	defer resp.Body.Close()

	copyResponseHeaders(w, resp)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are gone; all we can do is log the broken stream.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("MapServer response stream interrupted")
		metrics.RecordProxyRequest("interrupted", time.Since(start).Seconds())
		return
	}
	metrics.RecordProxyRequest("success", time.Since(start).Seconds())
}

func copyRequestHeaders(upstream *http.Request, r *http.Request) {
	for name, values := range r.Header {
		if _, drop := droppedRequestHeaders[http.CanonicalHeaderKey(name)]; drop {
			continue
		}
		for _, v := range values {
			upstream.Header.Add(name, v)
		}
	}
	upstream.Header.Set("User-Agent", userAgent)
}

func copyResponseHeaders(w http.ResponseWriter, resp *http.Response) {
	for name, values := range resp.Header {
		if _, drop := droppedResponseHeaders[http.CanonicalHeaderKey(name)]; drop {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
}

// classifyUpstreamError separates transport failures, which are the
// upstream's fault, from everything else. Client.Do wraps every
// connection, DNS and timeout failure in *url.Error.
func classifyUpstreamError(err error) (outcome string, status int, message string) {
	var urlErr *url.Error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "upstream_error", http.StatusBadGateway, upstreamErrorMessage
	case errors.As(err, &urlErr), errors.Is(err, context.DeadlineExceeded):
		return "upstream_error", http.StatusBadGateway, upstreamErrorMessage
	default:
		return "error", http.StatusInternalServerError, "Internal server error"
	}
}

// writeProxyError emits a fixed plain-text diagnostic. Map clients
// request images and tiles, not JSON envelopes, so errors stay terse.
func writeProxyError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}
