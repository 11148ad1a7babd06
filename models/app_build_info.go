// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

// BuildInfoUnknown stands in for build metadata the linker did not set.
const BuildInfoUnknown = "N/A"

// AppBuildInfo is the build metadata reported by GET /version and the
// health endpoint. It is injected through -ldflags at release time.
type AppBuildInfo struct {
	buildVersion string
	buildDate    string
	buildCommit  string
}

// NewAppBuildInfo trims each value and substitutes BuildInfoUnknown for
// blanks.
func NewAppBuildInfo(buildVersion, buildDate, buildCommit string) AppBuildInfo {
	return AppBuildInfo{
		buildVersion: orUnknown(buildVersion),
		buildDate:    orUnknown(buildDate),
		buildCommit:  orUnknown(buildCommit),
	}
}

// WithVersion returns a copy reporting version instead of the linked one.
// A blank version keeps the current value.
func (a AppBuildInfo) WithVersion(version string) AppBuildInfo {
	if v := strings.TrimSpace(version); v != "" {
		a.buildVersion = v
	}
	return a
}

func (a AppBuildInfo) BuildVersion() string {
	return a.buildVersion
}

func (a AppBuildInfo) BuildDate() string {
	return a.buildDate
}

func (a AppBuildInfo) BuildCommit() string {
	return a.buildCommit
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return BuildInfoUnknown
	}
	return s
}
