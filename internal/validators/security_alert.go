package validators

import (
	"context"
	"strings"

	"github.com/shamell/trustgate/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	FieldSource   = "source"
	FieldService  = "service"
	FieldSeverity = "severity"
	FieldAlerts   = "alerts"
	FieldNote     = "note"
)

// Limits applied to security alert reports, in bytes.
const (
	MaxSourceLength  = 128
	MaxServiceLength = 64
	MaxAlerts        = 64
	MaxAlertLength   = 256
	MaxNoteLength    = 1024
)

// SecurityAlertValidator implements Validator for models.SecurityAlert.
// Values are checked as NormalizeSecurityAlert would leave them, so
// surrounding whitespace and an empty severity are accepted.
type SecurityAlertValidator struct{}

// NewSecurityAlertValidator constructs a SecurityAlertValidator and
// returns it as the Validator interface.
func NewSecurityAlertValidator() Validator {
	return &SecurityAlertValidator{}
}

func (v *SecurityAlertValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SecurityAlert:
		return v.validateSecurityAlert(ctx, NormalizeSecurityAlert(value), fields...)
	case *models.SecurityAlert:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateSecurityAlert(ctx, NormalizeSecurityAlert(*value), fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *SecurityAlertValidator) validateSecurityAlert(_ context.Context, alert models.SecurityAlert, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldSource, FieldService, FieldSeverity, FieldAlerts, FieldNote}
	}

	for _, f := range fields {
		switch f {
		case FieldSource:
			if alert.Source == "" || len(alert.Source) > MaxSourceLength {
				return ErrInvalidSource
			}
		case FieldService:
			if len(alert.Service) > MaxServiceLength {
				return ErrInvalidService
			}
		case FieldSeverity:
			switch alert.Severity {
			case models.SeverityInfo, models.SeverityWarning, models.SeverityHigh, models.SeverityCritical:
			default:
				return ErrInvalidSeverity
			}
		case FieldAlerts:
			if len(alert.Alerts) == 0 {
				return ErrNoAlerts
			}
			if len(alert.Alerts) > MaxAlerts {
				return ErrTooManyAlerts
			}
			for _, item := range alert.Alerts {
				if item == "" || len(item) > MaxAlertLength {
					return ErrInvalidAlert
				}
			}
		case FieldNote:
			if len(alert.Note) > MaxNoteLength {
				return ErrInvalidNote
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// NormalizeSecurityAlert trims every text field, lowercases the severity
// and defaults it to warning. The input is not modified.
func NormalizeSecurityAlert(alert models.SecurityAlert) models.SecurityAlert {
	out := alert
	out.Source = strings.TrimSpace(alert.Source)
	out.Service = strings.TrimSpace(alert.Service)
	out.Timestamp = strings.TrimSpace(alert.Timestamp)
	out.Note = strings.TrimSpace(alert.Note)

	out.Severity = strings.ToLower(strings.TrimSpace(alert.Severity))
	if out.Severity == "" {
		out.Severity = models.SeverityWarning
	}

	if alert.Alerts != nil {
		out.Alerts = make([]string, len(alert.Alerts))
		for i, item := range alert.Alerts {
			out.Alerts[i] = strings.TrimSpace(item)
		}
	}
	return out
}
