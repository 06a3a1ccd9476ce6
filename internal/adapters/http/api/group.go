package api

import (
	"context"
	"net/http"

	"github.com/okian/firstlevel/internal/domain/model"
)

// GroupDependencies defines what the synchronous grouping endpoint needs.
type GroupDependencies interface {
	GroupNow(ctx context.Context, payload []byte) (model.ConditionModel, error)
}

// GroupHandler groups an event table in the request path.
type GroupHandler struct {
	deps         GroupDependencies
	maxBodyBytes int64
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(deps GroupDependencies, maxBodyBytes int64) *GroupHandler {
	return &GroupHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleGroup handles POST /group. The response is the condition model.
func (h *GroupHandler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	const op = "api.group"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	m, err := h.deps.GroupNow(r.Context(), body)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
