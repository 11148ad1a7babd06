package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

func newUpstream(t *testing.T, status int, body string, seen *seenRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if seen != nil {
			*seen = seenRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, header: r.Header.Clone(), body: string(b)}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Internal-Debug", "leak")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestForwarder(baseURL string, mutate func(*Options)) *Forwarder {
	opts := Options{
		Name:             "payments",
		BaseURL:          baseURL,
		StripPrefix:      "/payments",
		Timeout:          time.Second,
		InternalSecret:   "upstream-secret-0123456789",
		CallerID:         "bff",
		MaxRequestBytes:  1024,
		MaxResponseBytes: 1024,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestForwarder_RelaysRequest(t *testing.T) {
	var seen seenRequest
	srv := newUpstream(t, http.StatusCreated, `{"id":"tx-1"}`, &seen)
	f := newTestForwarder(srv.URL, nil)

	req := httptest.NewRequest(http.MethodPost, "/payments/transfers?dry_run=1", strings.NewReader(`{"amount":5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "idem-1")
	req.Header.Set("Cookie", "__Host-sa_session=0123456789abcdef0123456789abcdef")
	req.Header.Set("X-Internal-Secret", "forged")
	req.Header.Set("X-Internal-Service-Id", "forged")
	req.Header.Set("X-Auth-Roles", "admin")
	req.Header.Set("X-Shamell-Account-Id", "forged")

	ctx := context.WithValue(req.Context(), utils.RequestIDCtxKey, "req-42")
	ctx = context.WithValue(ctx, utils.AccountIDCtxKey, "acc-1")
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"tx-1"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("X-Internal-Debug"))

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "/transfers", seen.path)
	assert.Equal(t, "dry_run=1", seen.query)
	assert.Equal(t, `{"amount":5}`, seen.body)
	assert.Equal(t, "idem-1", seen.header.Get("Idempotency-Key"))
	assert.Equal(t, "upstream-secret-0123456789", seen.header.Get(guard.DefaultInternalSecretHeader))
	assert.Equal(t, "bff", seen.header.Get(guard.DefaultInternalCallerHeader))
	assert.Equal(t, "req-42", seen.header.Get(guard.DefaultRequestIDHeader))
	assert.Equal(t, "acc-1", seen.header.Get(AccountIDHeader))
	assert.Empty(t, seen.header.Get("Cookie"))
	assert.Empty(t, seen.header.Get("X-Auth-Roles"))
}

func TestForwarder_StripsForgedAccountWithoutSession(t *testing.T) {
	var seen seenRequest
	srv := newUpstream(t, http.StatusOK, `{}`, &seen)
	f := newTestForwarder(srv.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/payments/wallets", nil)
	req.Header.Set(AccountIDHeader, "acc-forged")
	f.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, seen.header.Get(AccountIDHeader))
}

func TestForwarder_HidesUpstreamErrors(t *testing.T) {
	srv := newUpstream(t, http.StatusInternalServerError, `{"detail":"pq: relation wallets does not exist"}`, nil)

	t.Run("hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestForwarder(srv.URL, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/wallets", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "payments upstream error", decodeDetail(t, rec))
	})

	t.Run("exposed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f := newTestForwarder(srv.URL, func(o *Options) { o.ExposeErrors = true })
		f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/wallets", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, decodeDetail(t, rec), "relation wallets")
	})
}

func TestForwarder_HidesClientErrorsToo(t *testing.T) {
	srv := newUpstream(t, http.StatusConflict, `{"detail":"wallet 123 belongs to acc-9"}`, nil)
	rec := httptest.NewRecorder()
	newTestForwarder(srv.URL, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/wallets", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "payments upstream error", decodeDetail(t, rec))
}

func TestForwarder_RequestBodyLimit(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, `{}`, nil)
	f := newTestForwarder(srv.URL, func(o *Options) { o.MaxRequestBytes = 8 })

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/x", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body too large", decodeDetail(t, rec))

	rec = httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/x", strings.NewReader("01234567")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForwarder_ResponseBodyLimit(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, strings.Repeat("a", 64), nil)
	f := newTestForwarder(srv.URL, func(o *Options) { o.MaxResponseBytes = 32 })

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/big", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "payments upstream response too large", decodeDetail(t, rec))
}

func TestForwarder_UpstreamDown(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, `{}`, nil)
	url := srv.URL
	srv.Close()

	rec := httptest.NewRecorder()
	newTestForwarder(url, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/wallets", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "payments upstream unavailable", decodeDetail(t, rec))
}

func TestForwarder_RedirectIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://elsewhere.example/login", http.StatusFound)
	}))
	t.Cleanup(srv.Close)

	rec := httptest.NewRecorder()
	newTestForwarder(srv.URL, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/wallets", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "payments upstream unavailable", decodeDetail(t, rec))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestForwarder_ConfiguredHeaderNames(t *testing.T) {
	var seen seenRequest
	srv := newUpstream(t, http.StatusOK, `{}`, &seen)
	f := newTestForwarder(srv.URL, func(o *Options) {
		o.SecretHeader = "X-Svc-Secret"
		o.CallerHeader = "X-Svc-Caller"
		o.RequestIDHeader = "X-Correlation-Id"
	})

	req := httptest.NewRequest(http.MethodGet, "/payments/wallets", nil)
	ctx := context.WithValue(req.Context(), utils.RequestIDCtxKey, "req-7")
	f.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	assert.Equal(t, "upstream-secret-0123456789", seen.header.Get("X-Svc-Secret"))
	assert.Equal(t, "bff", seen.header.Get("X-Svc-Caller"))
	assert.Equal(t, "req-7", seen.header.Get("X-Correlation-Id"))
	assert.Empty(t, seen.header.Get(guard.DefaultInternalSecretHeader))
	assert.Empty(t, seen.header.Get(guard.DefaultInternalCallerHeader))
}

func TestForwarder_UpstreamPath(t *testing.T) {
	f := newTestForwarder("http://payments", nil)
	assert.Equal(t, "/wallets/1", f.upstreamPath("/payments/wallets/1"))
	assert.Equal(t, "/", f.upstreamPath("/payments"))
	assert.Equal(t, "/other", f.upstreamPath("/other"))
	assert.Equal(t, "payments", f.Name())
}

func TestReadCapped(t *testing.T) {
	b, err := readCapped(strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))

	_, err = readCapped(strings.NewReader("abcd"), 3)
	assert.ErrorIs(t, err, errBodyTooLarge)

	b, err = readCapped(strings.NewReader("abcd"), 0)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(b))
}
