package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/mock"
	"github.com/shamell/trustgate/internal/validators"
)

const alertsPath = "/internal/security/alerts"

func TestSecurityAlerts(t *testing.T) {
	validBody := `{"source":"waf-monitor","service":"payments","alerts":["burst of 401s","token replay"],"severity":" CRITICAL "}`

	tests := []struct {
		name         string
		body         string
		caller       string
		withSecret   bool
		wantStatus   int
		wantDetail   string
		wantBody     string
		wantLogLevel string
	}{
		{
			name:       "missing secret",
			body:       validBody,
			caller:     "security-reporter",
			wantStatus: http.StatusUnauthorized,
			wantDetail: guard.DetailInternalAuthRequired,
		},
		{
			name:       "caller not allowed",
			body:       validBody,
			caller:     "payments",
			withSecret: true,
			wantStatus: http.StatusUnauthorized,
			wantDetail: guard.DetailInternalCallerNotAllowed,
		},
		{
			name:       "malformed json",
			body:       `{"source":`,
			caller:     "security-reporter",
			withSecret: true,
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid json body",
		},
		{
			name:       "no alerts",
			body:       `{"source":"waf-monitor","alerts":[]}`,
			caller:     "security-reporter",
			withSecret: true,
			wantStatus: http.StatusBadRequest,
			wantDetail: validators.ErrNoAlerts.Error(),
		},
		{
			name:       "unknown severity",
			body:       `{"source":"waf-monitor","alerts":["x"],"severity":"meh"}`,
			caller:     "security-reporter",
			withSecret: true,
			wantStatus: http.StatusBadRequest,
			wantDetail: validators.ErrInvalidSeverity.Error(),
		},
		{
			name:       "body too large",
			body:       `{"source":"waf-monitor","alerts":["x"],"note":"` + strings.Repeat("n", 2048) + `"}`,
			caller:     "security-reporter",
			withSecret: true,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantDetail: "request body too large",
		},
		{
			name:         "accepted critical",
			body:         validBody,
			caller:       " Security-Reporter ",
			withSecret:   true,
			wantStatus:   http.StatusAccepted,
			wantBody:     `{"status":"accepted","accepted":2}`,
			wantLogLevel: `"level":"error"`,
		},
		{
			name:         "accepted default severity",
			body:         `{"source":"waf-monitor","alerts":["one"]}`,
			caller:       "security-reporter",
			withSecret:   true,
			wantStatus:   http.StatusAccepted,
			wantBody:     `{"status":"accepted","accepted":1}`,
			wantLogLevel: `"level":"warn"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t, sessionResolver(t))

			req := newRequest(http.MethodPost, alertsPath, tt.body)
			req.Header.Set(guard.DefaultInternalCallerHeader, tt.caller)
			if tt.withSecret {
				req.Header.Set(guard.DefaultInternalSecretHeader, testInternalSecret)
			}
			rr := gw.do(req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, detailOf(t, rr))
			}
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
			if tt.wantLogLevel != "" {
				logs := gw.logs.String()
				assert.Contains(t, logs, "security alert received")
				assert.Contains(t, logs, tt.wantLogLevel)
			}
		})
	}
}

func TestSecurityAlerts_UsesValidator(t *testing.T) {
	ctrl := gomock.NewController(t)
	validator := mock.NewMockValidator(ctrl)
	validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validators.ErrInvalidSource)

	gw := newTestGateway(t, sessionResolver(t), func(d *Dependencies) {
		d.AlertValidator = validator
	})

	req := withInternal(newRequest(http.MethodPost, alertsPath, `{"alerts":["x"]}`), "security-reporter")
	rr := gw.do(req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, validators.ErrInvalidSource.Error(), detailOf(t, rr))
}

func TestSecurityAlerts_ConfiguredCallerHeader(t *testing.T) {
	gw := newTestGateway(t, sessionResolver(t), func(d *Dependencies) {
		d.InternalAuth = guard.NewInternalAuth(guard.InternalAuthOptions{
			Required:     true,
			Secret:       testInternalSecret,
			SecretHeader: "X-Svc-Secret",
			CallerHeader: "X-Svc-Caller",
		})
	})

	req := newRequest(http.MethodPost, alertsPath, `{"source":"waf-monitor","alerts":["one"]}`)
	req.Header.Set("X-Svc-Secret", testInternalSecret)
	req.Header.Set("X-Svc-Caller", "Security-Reporter")
	rr := gw.do(req)

	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	assert.Contains(t, gw.logs.String(), `"caller":"security-reporter"`)

	req = newRequest(http.MethodPost, alertsPath, `{"source":"waf-monitor","alerts":["one"]}`)
	req.Header.Set("X-Svc-Secret", testInternalSecret)
	req.Header.Set(guard.DefaultInternalCallerHeader, "security-reporter")
	rr = gw.do(req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, guard.DetailInternalCallerNotAllowed, detailOf(t, rr))
}

func TestSeverityLevel(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, severityLevel("critical"))
	assert.Equal(t, zerolog.ErrorLevel, severityLevel("high"))
	assert.Equal(t, zerolog.WarnLevel, severityLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, severityLevel("info"))
}
