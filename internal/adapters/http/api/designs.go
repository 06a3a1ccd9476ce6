package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/firstlevel/internal/app"
	"github.com/okian/firstlevel/internal/domain/types"
)

// DesignDependencies defines what the designs endpoints need.
type DesignDependencies interface {
	Submit(ctx context.Context, u service.Upload) (types.Receipt, error)
	Design(ctx context.Context, id string) (types.DesignView, error)
	Designs(ctx context.Context, subject string) ([]types.DesignView, error)
}

// DesignsHandler handles design uploads and lookups.
type DesignsHandler struct {
	deps         DesignDependencies
	maxBodyBytes int64
}

// NewDesignsHandler creates a new designs handler.
func NewDesignsHandler(deps DesignDependencies, maxBodyBytes int64) *DesignsHandler {
	return &DesignsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type listResponse struct {
	Designs []types.DesignView `json:"designs"`
}

// HandleDesigns handles POST /designs?subject=&run= with an event table
// body, and GET /designs?subject=.
func (h *DesignsHandler) HandleDesigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *DesignsHandler) submit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_design"
	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	q := r.URL.Query()
	rec, err := h.deps.Submit(r.Context(), service.Upload{
		Subject: strings.TrimSpace(q.Get("subject")),
		Run:     strings.TrimSpace(q.Get("run")),
		Payload: body,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	status := http.StatusAccepted
	if rec.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, rec)
}

func (h *DesignsHandler) list(w http.ResponseWriter, r *http.Request) {
	designs, err := h.deps.Designs(r.Context(), strings.TrimSpace(r.URL.Query().Get("subject")))
	if err != nil {
		writeServiceError(w, "api.list_designs", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Designs: designs})
}

// HandleGetDesign handles GET /designs/{id}.
func (h *DesignsHandler) HandleGetDesign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/designs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind("api.get_design", ErrBadRequest))
		return
	}
	d, err := h.deps.Design(r.Context(), id)
	if err != nil {
		writeServiceError(w, "api.get_design", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
