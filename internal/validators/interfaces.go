// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks payloads the gateway accepts from internal
// callers before they reach a log or a metric.
//
// A Validator receives a pointer to the decoded value and, optionally, the
// names of the fields to check; without names every field is checked.
// Unsupported types yield ErrUnsupportedType and unknown field names
// ErrUnknownField.
package validators

import "context"

// Validator checks a decoded payload.
//
//go:generate mockgen -source=interfaces.go -destination=../mock/validator_mock.go -package=mock
type Validator interface {
	Validate(ctx context.Context, value any, fields ...string) error
}
