package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/validators"
	"github.com/shamell/trustgate/models"
)

// securityAlerts ingests a batch of runtime security alerts from an
// internal reporter and writes it to the log at a level matching its
// severity.
func (h *Handler) securityAlerts(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var alert models.SecurityAlert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			guard.WriteDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		log.Debug().Err(err).Str("func", "Handler.securityAlerts").Msg("invalid alert payload")
		guard.WriteDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.deps.AlertValidator.Validate(r.Context(), &alert); err != nil {
		guard.WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	alert = validators.NormalizeSecurityAlert(alert)

	caller := strings.ToLower(strings.TrimSpace(r.Header.Get(h.alertAuth.CallerHeader())))
	log.WithLevel(severityLevel(alert.Severity)).
		Str("source", alert.Source).
		Str("service", alert.Service).
		Str("caller", caller).
		Str("severity", alert.Severity).
		Str("timestamp", alert.Timestamp).
		Uint64("window_secs", alert.WindowSecs).
		Strs("alerts", alert.Alerts).
		Str("note", alert.Note).
		Msg("security alert received")

	h.writeJSON(w, r, models.SecurityAlertResponse{
		Status:   "accepted",
		Accepted: len(alert.Alerts),
	}, http.StatusAccepted)
}

func severityLevel(severity string) zerolog.Level {
	switch severity {
	case models.SeverityCritical, models.SeverityHigh:
		return zerolog.ErrorLevel
	case models.SeverityInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}
