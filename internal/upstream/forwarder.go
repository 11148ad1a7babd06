// Package upstream relays gateway requests to the internal services behind
// it (payments, chat, bus).
//
// The forwarder is the only place where the gateway speaks for the caller.
// It rebuilds the outgoing header set from a safelist, authenticates itself
// with the internal-auth headers, and never relays more than the configured
// number of bytes in either direction.
package upstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/utils"
)

// AccountIDHeader carries the authenticated account id to the upstream.
const AccountIDHeader = "X-Shamell-Account-Id"

// forwardedRequestHeaders are the only client headers relayed upstream.
var forwardedRequestHeaders = []string{
	"Accept",
	"Accept-Language",
	"Content-Type",
	"Idempotency-Key",
	"X-Device-Id",
	"X-Merchant",
	"X-Ref",
	"X-Chat-Device-Id",
	"X-Chat-Device-Token",
}

// relayedResponseHeaders are the only upstream headers relayed back.
var relayedResponseHeaders = []string{
	"Content-Type",
	"Cache-Control",
	"Retry-After",
}

// Options configures a Forwarder.
type Options struct {
	// Name labels the upstream in logs and error details, e.g. "payments".
	Name    string
	BaseURL string
	// StripPrefix is removed from the request path before forwarding.
	StripPrefix string
	Timeout     time.Duration
	// InternalSecret and CallerID authenticate the gateway upstream.
	InternalSecret string
	CallerID       string
	// SecretHeader, CallerHeader and RequestIDHeader name the outgoing
	// internal-auth and correlation headers. Blank values take the guard
	// package defaults.
	SecretHeader    string
	CallerHeader    string
	RequestIDHeader string
	// MaxRequestBytes caps the relayed request body.
	MaxRequestBytes int64
	// MaxResponseBytes caps the relayed response body.
	MaxResponseBytes int64
	// ExposeErrors relays upstream 4xx/5xx bodies verbatim. When false they
	// are replaced by a generic detail.
	ExposeErrors bool
}

// Forwarder is an http.Handler relaying requests to one upstream.
type Forwarder struct {
	opts   Options
	client *utils.HTTPClient
}

// New returns a Forwarder for opts.
func New(opts Options) *Forwarder {
	if opts.SecretHeader == "" {
		opts.SecretHeader = guard.DefaultInternalSecretHeader
	}
	if opts.CallerHeader == "" {
		opts.CallerHeader = guard.DefaultInternalCallerHeader
	}
	if opts.RequestIDHeader == "" {
		opts.RequestIDHeader = guard.DefaultRequestIDHeader
	}
	return &Forwarder{
		opts:   opts,
		client: utils.NewHTTPClient(strings.TrimRight(opts.BaseURL, "/"), opts.Timeout),
	}
}

// Name returns the upstream label.
func (f *Forwarder) Name() string {
	return f.opts.Name
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	body, err := f.readBody(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, errBodyTooLarge) {
			guard.WriteDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		log.Err(err).Str("func", "Forwarder.ServeHTTP").Msg("failed to read request body")
		guard.WriteDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := f.client.R().
		SetContext(r.Context()).
		SetDoNotParseResponse(true).
		SetHeaders(f.outgoingHeaders(r)).
		SetQueryString(r.URL.RawQuery)
	if len(body) > 0 {
		req.SetBody(body)
	}

	path := f.upstreamPath(r.URL.Path)
	resp, err := req.Execute(r.Method, path)
	if err != nil {
		log.Err(err).
			Str("upstream", f.opts.Name).
			Str("path", path).
			Msg("upstream request failed")
		guard.WriteDetail(w, http.StatusBadGateway, fmt.Sprintf("%s upstream unavailable", f.opts.Name))
		return
	}
	raw := resp.RawBody()
	defer raw.Close()

	status := resp.StatusCode()
	if !f.opts.ExposeErrors && status >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(raw, f.opts.MaxResponseBytes))
		log.Warn().
			Str("upstream", f.opts.Name).
			Str("path", path).
			Int("status", status).
			Msg("upstream error hidden from client")
		guard.WriteDetail(w, status, fmt.Sprintf("%s upstream error", f.opts.Name))
		return
	}

	out, err := readCapped(raw, f.opts.MaxResponseBytes)
	if err != nil {
		log.Warn().
			Err(err).
			Str("upstream", f.opts.Name).
			Str("path", path).
			Int64("max_bytes", f.opts.MaxResponseBytes).
			Msg("upstream response rejected")
		guard.WriteDetail(w, http.StatusBadGateway, fmt.Sprintf("%s upstream response too large", f.opts.Name))
		return
	}

	for _, name := range relayedResponseHeaders {
		if v := resp.Header().Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

var errBodyTooLarge = errors.New("body exceeds limit")

func (f *Forwarder) readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	return readCapped(r.Body, f.opts.MaxRequestBytes)
}

// readCapped reads all of src, failing when it holds more than limit bytes.
// A non-positive limit disables the cap.
func readCapped(src io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(src)
	}
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, errBodyTooLarge
	}
	return buf.Bytes(), nil
}

// outgoingHeaders rebuilds the upstream header set. Client-supplied
// internal-auth, role and account headers never survive: only safelisted
// headers are copied and the gateway's own values are set afterwards.
func (f *Forwarder) outgoingHeaders(r *http.Request) map[string]string {
	h := make(map[string]string, len(forwardedRequestHeaders)+4)
	for _, name := range forwardedRequestHeaders {
		if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
			h[name] = v
		}
	}

	if f.opts.InternalSecret != "" {
		h[f.opts.SecretHeader] = f.opts.InternalSecret
	}
	if f.opts.CallerID != "" {
		h[f.opts.CallerHeader] = f.opts.CallerID
	}
	if id, ok := utils.GetRequestIDFromContext(r.Context()); ok {
		h[f.opts.RequestIDHeader] = id
	}
	if account := guard.AccountIDFromContext(r.Context()); account != "" {
		h[AccountIDHeader] = account
	}
	return h
}

func (f *Forwarder) upstreamPath(p string) string {
	p = strings.TrimPrefix(p, f.opts.StripPrefix)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

var _ http.Handler = (*Forwarder)(nil)
