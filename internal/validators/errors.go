package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidSource   = errors.New("source must be present and <= 128 chars")
	ErrInvalidService  = errors.New("service must be <= 64 chars")
	ErrInvalidSeverity = errors.New("severity must be one of: info, warning, high, critical")
	ErrNoAlerts        = errors.New("alerts must contain at least one item")
	ErrTooManyAlerts   = errors.New("alerts must contain at most 64 items")
	ErrInvalidAlert    = errors.New("each alert must be present and <= 256 chars")
	ErrInvalidNote     = errors.New("note must be <= 1024 chars")
)
