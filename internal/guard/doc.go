// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package guard implements the request trust-boundary filters that sit in
// front of every gateway route.
//
// Each guard is a func(http.Handler) http.Handler built once from immutable
// options and safe for concurrent use. Guards are composed in an explicit
// order with Pipeline:
//
//	correlation → host → security headers → CSRF → authorizer → internal auth
//
// A guard that rejects a request writes a JSON body of the form
// {"detail": "<reason>"} through WriteDetail, logs the reason on the
// request-scoped logger and reports it to an optional DenialObserver.
// Secrets, cookies and tokens are never logged.
package guard
