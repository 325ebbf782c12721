// Package httpapi exposes the action service over HTTP JSON. It is the
// request-validation boundary: it rejects malformed input and maps domain
// error kinds to transport status codes; the domain below it trusts shape.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tracklane/actionledger/internal/action/domain"
)

// Service is the domain surface the HTTP layer drives.
type Service interface {
	Create(ctx context.Context, input domain.CreateInput) (domain.Action, error)
	List(ctx context.Context, query domain.Query) ([]domain.Action, error)
	Update(ctx context.Context, actionID string, input domain.UpdateInput) (domain.Action, error)
	Clear(ctx context.Context) error
}

// Handler serves the action HTTP API.
type Handler struct {
	svc Service
}

// NewHandler builds the chi router for the action API.
func NewHandler(svc Service) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(requestMetrics)
	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metricsHandler())
	r.Route("/v1/actions", func(r chi.Router) {
		r.Post("/", h.createAction)
		r.Get("/", h.listActions)
		r.Delete("/", h.clearActions)
		r.Patch("/{actionID}", h.updateAction)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type createRequest struct {
	Service  string          `json:"service"`
	State    *int64          `json:"state"`
	Metadata json.RawMessage `json:"metadata"`
}

type createResponse struct {
	ActionID string `json:"actionId"`
}

func (h *Handler) createAction(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidArgument, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Service) == "" {
		writeError(w, http.StatusBadRequest, kindInvalidArgument, "service is required")
		return
	}
	if req.State == nil {
		writeError(w, http.StatusBadRequest, kindInvalidArgument, "state is required")
		return
	}
	metadata, ok := decodeMetadata(w, req.Metadata)
	if !ok {
		return
	}

	created, err := h.svc.Create(r.Context(), domain.CreateInput{
		Service:  req.Service,
		State:    *req.State,
		Metadata: metadata,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ActionID: created.ID})
}

type listResponse struct {
	Actions []actionJSON `json:"actions"`
}

func (h *Handler) listActions(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	query := domain.Query{Sort: domain.SortDesc}
	if rawService, present := values["service"]; present {
		service := ""
		if len(rawService) > 0 {
			service = strings.TrimSpace(rawService[0])
		}
		if service == "" {
			writeError(w, http.StatusBadRequest, kindInvalidArgument, "service filter must be non-empty")
			return
		}
		query.Service = service
	}
	for _, raw := range values["status"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, err := domain.ParseStatus(part)
			if err != nil {
				writeError(w, http.StatusBadRequest, kindInvalidArgument, err.Error())
				return
			}
			query.Statuses = append(query.Statuses, status)
		}
	}
	if raw := values.Get("sort"); raw != "" {
		sort, err := domain.ParseSortOrder(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidArgument, err.Error())
			return
		}
		query.Sort = sort
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, kindInvalidArgument, "limit must be a positive integer")
			return
		}
		query.Limit = limit
	}

	actions, err := h.svc.List(r.Context(), query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := listResponse{Actions: make([]actionJSON, 0, len(actions))}
	for _, action := range actions {
		resp.Actions = append(resp.Actions, toActionJSON(action))
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateRequest struct {
	Status   *string         `json:"status"`
	Metadata json.RawMessage `json:"metadata"`
}

func (h *Handler) updateAction(w http.ResponseWriter, r *http.Request) {
	actionID := chi.URLParam(r, "actionID")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidArgument, "invalid request body")
		return
	}

	var input domain.UpdateInput
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidArgument, err.Error())
			return
		}
		input.Status = &status
	}
	metadata, ok := decodeMetadata(w, req.Metadata)
	if !ok {
		return
	}
	input.Metadata = metadata
	if input.Empty() {
		writeError(w, http.StatusBadRequest, kindInvalidArgument, "update requires a status or metadata")
		return
	}

	updated, err := h.svc.Update(r.Context(), actionID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionJSON(updated))
}

func (h *Handler) clearActions(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeMetadata parses an optional metadata document. Absent and JSON
// null mean "not provided"; anything else must be a JSON object.
func decodeMetadata(w http.ResponseWriter, raw json.RawMessage) (domain.Metadata, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}
	var metadata domain.Metadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidArgument, "metadata must be a JSON object")
		return nil, false
	}
	if metadata == nil {
		metadata = domain.Metadata{}
	}
	return metadata, true
}

type actionJSON struct {
	ActionID  string          `json:"actionId"`
	Service   string          `json:"service"`
	State     int64           `json:"state"`
	Status    string          `json:"status"`
	Metadata  domain.Metadata `json:"metadata"`
	ClosedAt  *time.Time      `json:"closedAt"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toActionJSON(action domain.Action) actionJSON {
	return actionJSON{
		ActionID:  action.ID,
		Service:   action.Service,
		State:     action.State,
		Status:    string(action.Status),
		Metadata:  action.Metadata,
		ClosedAt:  action.ClosedAt,
		CreatedAt: action.CreatedAt,
		UpdatedAt: action.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
