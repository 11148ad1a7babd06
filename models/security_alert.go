package models

// Alert severities accepted by the security alert ingest endpoint.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// SecurityAlert is a batch of runtime security alerts reported by an
// internal monitoring job.
type SecurityAlert struct {
	// Source names the reporting job. Required, at most 128 characters.
	Source string `json:"source"`

	// Service names the service the alerts refer to. Optional, at most 64
	// characters.
	Service string `json:"service,omitempty"`

	// Timestamp is the reporter's own timestamp, passed through verbatim.
	Timestamp string `json:"timestamp,omitempty"`

	// WindowSecs is the aggregation window the alerts were computed over.
	WindowSecs uint64 `json:"window_secs,omitempty"`

	// Alerts holds between 1 and 64 alert lines of at most 256 characters.
	Alerts []string `json:"alerts"`

	// Severity is one of info, warning, high or critical. Defaults to
	// warning when empty.
	Severity string `json:"severity,omitempty"`

	// Note is a free-form comment of at most 1024 characters.
	Note string `json:"note,omitempty"`
}
