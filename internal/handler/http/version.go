package http

import (
	"net/http"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, models.HealthResponse{
		Status:  "ok",
		Env:     h.deps.Env,
		Service: h.deps.Service,
		Version: h.deps.BuildInfo.BuildVersion(),
	}, http.StatusOK)
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, models.VersionResponse{
		Version: h.deps.BuildInfo.BuildVersion(),
		Date:    h.deps.BuildInfo.BuildDate(),
		Commit:  h.deps.BuildInfo.BuildCommit(),
	}, http.StatusOK)
}

// myRoles reports the caller's account and the roles the edge vouched for.
func (h *Handler) myRoles(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, models.RolesResponse{
		AccountID: guard.AccountIDFromContext(r.Context()),
		Roles:     guard.RolesFromContext(r.Context()),
	}, http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	if _, err := utils.WriteJSON(w, data, status); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "Handler.writeJSON").Msg("failed to write response")
	}
}
