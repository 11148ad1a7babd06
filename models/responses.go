package models

// ErrorResponse is the body of every error returned by the gateway:
//
//	{"detail": "<reason>"}
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Env     string `json:"env"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// VersionResponse is returned by GET /version.
type VersionResponse struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// RolesResponse is returned by GET /me/roles. Roles holds the trusted role
// set of the caller and is never nil.
type RolesResponse struct {
	AccountID string   `json:"account_id"`
	Roles     []string `json:"roles"`
}

// SecurityAlertResponse acknowledges an accepted batch of security alerts.
type SecurityAlertResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}
