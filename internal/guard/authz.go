package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
)

// DefaultSessionTimeout bounds a single session lookup.
const DefaultSessionTimeout = 2 * time.Second

// SessionResolver resolves a session token to the session it identifies.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.Session, error)
}

// AuthorizerOptions configures an Authorizer.
type AuthorizerOptions struct {
	// Enforce turns RequireAdmin and RequireRole on. When false they pass
	// every request.
	Enforce bool
	// Resolver looks up the session behind the cookie.
	Resolver SessionResolver
	// Roles derives the trusted role set. Nil trusts no roles.
	Roles *RoleExtractor
	// SessionTimeout defaults to DefaultSessionTimeout.
	SessionTimeout time.Duration
	// AcceptLegacyCookie honours the legacy session cookie name.
	AcceptLegacyCookie bool
}

// Authorizer gates routes on an authenticated session and a trusted role.
type Authorizer struct {
	common
	enforce      bool
	resolver     SessionResolver
	roles        *RoleExtractor
	timeout      time.Duration
	acceptLegacy bool
}

// NewAuthorizer builds an Authorizer. It fails when enforcement is on and
// no resolver is given.
func NewAuthorizer(opts AuthorizerOptions, guardOpts ...Option) (*Authorizer, error) {
	if opts.Enforce && opts.Resolver == nil {
		return nil, ErrNilResolver
	}
	a := &Authorizer{
		common:       newCommon(guardOpts),
		enforce:      opts.Enforce,
		resolver:     opts.Resolver,
		roles:        opts.Roles,
		timeout:      opts.SessionTimeout,
		acceptLegacy: opts.AcceptLegacyCookie,
	}
	if a.roles == nil {
		a.roles = NewRoleExtractor(RoleExtractorOptions{})
	}
	if a.timeout <= 0 {
		a.timeout = DefaultSessionTimeout
	}
	return a, nil
}

// RequireAdmin admits callers with a session and the admin or superadmin
// role.
func (a *Authorizer) RequireAdmin() Filter {
	return a.RequireRole(RoleAdmin)
}

// RequireRole admits callers with a session and role (or admin or
// superadmin). A session check always precedes the role check so that an
// unauthenticated caller learns nothing about role requirements.
//
// RequireRole panics on a blank role; routes are wired at startup.
func (a *Authorizer) RequireRole(role string) Filter {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		panic(ErrEmptyRole)
	}
	forbidden := fmt.Sprintf("%s role required", role)

	return func(next http.Handler) http.Handler {
		if !a.enforce {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := a.resolve(w, r)
			if !ok {
				return
			}

			roles := a.roles.Trusted(r.Header)
			if !roles.Satisfies(role) {
				deny(w, r, a.observer, GuardAuthz, http.StatusForbidden, forbidden, "missing_role")
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), sess, roles)))
		})
	}
}

// RequireSession admits any caller with a resolvable session, regardless
// of the enforcement switch, and stores the principal in the context.
func (a *Authorizer) RequireSession() Filter {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := a.resolve(w, r)
			if !ok {
				return
			}
			roles := a.roles.Trusted(r.Header)
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), sess, roles)))
		})
	}
}

// resolve writes a 401 and returns false when the request carries no
// resolvable session.
func (a *Authorizer) resolve(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	token := SessionToken(r, a.acceptLegacy)
	if token == "" {
		deny(w, r, a.observer, GuardAuthz, http.StatusUnauthorized, DetailSessionRequired, "missing_session")
		return models.Session{}, false
	}
	if a.resolver == nil {
		deny(w, r, a.observer, GuardAuthz, http.StatusUnauthorized, DetailSessionRequired, "no_resolver")
		return models.Session{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	sess, err := a.resolver.Resolve(ctx, token)
	if err == nil && sess.AccountID == "" {
		err = errors.New("session without account id")
	}
	if err != nil {
		reason := "invalid_session"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "session_timeout"
		}
		logger.FromRequest(r).Debug().
			Err(err).
			Str("session", utils.Fingerprint(token)[:12]).
			Msg("session resolution failed")
		deny(w, r, a.observer, GuardAuthz, http.StatusUnauthorized, DetailSessionRequired, reason)
		return models.Session{}, false
	}
	return sess, true
}

func withPrincipal(ctx context.Context, sess models.Session, roles RoleSet) context.Context {
	ctx = context.WithValue(ctx, utils.AccountIDCtxKey, sess.AccountID)
	return context.WithValue(ctx, utils.RolesCtxKey, roles.Sorted())
}

// AccountIDFromContext returns the account id stored by the authorizer, or
// "" on routes it does not guard.
func AccountIDFromContext(ctx context.Context) string {
	id, _ := utils.GetAccountIDFromContext(ctx)
	return id
}

// RolesFromContext returns the trusted roles stored by the authorizer,
// sorted. It never returns nil.
func RolesFromContext(ctx context.Context) []string {
	roles, ok := utils.GetRolesFromContext(ctx)
	if !ok || roles == nil {
		return []string{}
	}
	return roles
}
