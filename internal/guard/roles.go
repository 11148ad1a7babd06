package guard

import (
	"net/http"
	"slices"
	"strings"

	"github.com/shamell/trustgate/internal/utils"
)

// Default header names used to convey roles from the trusted edge.
const (
	DefaultRolesHeader       = "X-Auth-Roles"
	DefaultLegacyRolesHeader = "X-Roles"
	DefaultRoleSecretHeader  = "X-Role-Auth"
)

// Roles that satisfy every role requirement.
const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// RoleSet is a set of lowercase role names.
type RoleSet map[string]struct{}

// Has reports whether role is in the set.
func (s RoleSet) Has(role string) bool {
	_, ok := s[strings.ToLower(role)]
	return ok
}

// Satisfies reports whether the set grants role, directly or through admin
// or superadmin.
func (s RoleSet) Satisfies(role string) bool {
	return s.Has(role) || s.Has(RoleAdmin) || s.Has(RoleSuperadmin)
}

// Sorted returns the roles in lexical order. It never returns nil.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for role := range s {
		out = append(out, role)
	}
	slices.Sort(out)
	return out
}

// RoleExtractorOptions configures a RoleExtractor.
type RoleExtractorOptions struct {
	// Secret is the role-header secret the edge must present. Blank means
	// role headers are never trusted.
	Secret string
	// RoleHeaders defaults to X-Auth-Roles and X-Roles.
	RoleHeaders []string
	// SecretHeader defaults to DefaultRoleSecretHeader.
	SecretHeader string
}

// RoleExtractor derives the trusted role set of a request from role-list
// headers, gated on a shared role-header secret.
type RoleExtractor struct {
	secret       string
	roleHeaders  []string
	secretHeader string
}

// NewRoleExtractor builds an extractor.
func NewRoleExtractor(opts RoleExtractorOptions) *RoleExtractor {
	e := &RoleExtractor{
		secret:       strings.TrimSpace(opts.Secret),
		roleHeaders:  opts.RoleHeaders,
		secretHeader: opts.SecretHeader,
	}
	if len(e.roleHeaders) == 0 {
		e.roleHeaders = []string{DefaultRolesHeader, DefaultLegacyRolesHeader}
	}
	if e.secretHeader == "" {
		e.secretHeader = DefaultRoleSecretHeader
	}
	return e
}

// Headers returns every header name the extractor reads, including the
// secret header. Upstream forwarders strip these from client requests.
func (e *RoleExtractor) Headers() []string {
	return append(slices.Clone(e.roleHeaders), e.secretHeader)
}

// Trusted returns the roles listed in h when the role secret matches, and
// an empty set otherwise.
func (e *RoleExtractor) Trusted(h http.Header) RoleSet {
	out := RoleSet{}
	if e.secret == "" {
		return out
	}
	provided := headerText(h, e.secretHeader)
	if provided == "" || !utils.ConstantTimeEqual(provided, e.secret) {
		return out
	}

	for _, name := range e.roleHeaders {
		for _, raw := range h.Values(name) {
			for _, role := range strings.Split(raw, ",") {
				role = strings.ToLower(strings.TrimSpace(role))
				if role != "" {
					out[role] = struct{}{}
				}
			}
		}
	}
	return out
}
