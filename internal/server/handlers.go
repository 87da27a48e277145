package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/retrodex-labs/retrodex/pkg/core"
	"github.com/retrodex-labs/retrodex/pkg/slug"
)

type handlers struct {
	store  core.Store
	logger *slog.Logger
}

func newHandlers(store core.Store, logger *slog.Logger) *handlers {
	return &handlers{store: store, logger: logger}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// errBadQuery marks query parameter validation failures so respondError maps
// them to 400 instead of 500.
var errBadQuery = errors.New("invalid query parameter")

func (h *handlers) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encoding failed", slog.Any("error", err))
	}
}

func (h *handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadQuery):
		status = http.StatusBadRequest
	case isConstraintViolation(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestID(r.Context())),
			slog.Any("error", err))
		h.respond(w, status, errorResponse{Error: "internal error"})
		return
	}
	h.respond(w, status, errorResponse{Error: err.Error()})
}

func (h *handlers) badRequest(w http.ResponseWriter, msg string) {
	h.respond(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// isConstraintViolation sniffs driver errors for unique and foreign key
// violations. Neither driver exposes a shared sentinel for these.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "FOREIGN KEY constraint") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "violates foreign key")
}

// pageFromQuery reads page/limit query parameters.
func pageFromQuery(r *http.Request) (core.Page, error) {
	var p core.Page
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return p, errors.New("page must be a non-negative integer")
		}
		p.Page = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return p, errors.New("limit must be a positive integer")
		}
		p.Limit = n
	}
	return p, nil
}

// Healthz reports liveness.
func (h *handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) ListCores(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	filter, err := h.filterFromQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	details, err := h.store.ListCoreDetails(r.Context(), page, filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, details)
}

// filterFromQuery resolves platform/system/team references (id or slug) and
// the release_date_ge cutoff into a core filter.
func (h *handlers) filterFromQuery(r *http.Request) (core.CoreFilter, error) {
	var filter core.CoreFilter
	q := r.URL.Query()
	ctx := r.Context()

	if v := q.Get("system"); v != "" {
		sys, err := h.store.GetSystem(ctx, core.IDOrSlug(v))
		if err != nil {
			return filter, err
		}
		filter.SystemID = sys.ID
	}
	if v := q.Get("platform"); v != "" {
		p, err := h.store.GetPlatform(ctx, core.IDOrSlug(v))
		if err != nil {
			return filter, err
		}
		filter.PlatformID = p.ID
	}
	if v := q.Get("team"); v != "" {
		t, err := h.store.GetTeam(ctx, core.IDOrSlug(v))
		if err != nil {
			return filter, err
		}
		filter.TeamID = t.ID
	}
	if v := q.Get("release_date_ge"); v != "" {
		ts, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("%w: release_date_ge must be YYYY-MM-DD", errBadQuery)
		}
		filter.ReleasedSince = ts
	}
	return filter, nil
}

// createCoreRequest is the POST /cores body.
type createCoreRequest struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Metadata    core.JSON `json:"metadata"`
	Links       core.JSON `json:"links"`
	OwnerTeamID int32     `json:"owner_team_id"`
	SystemIDs   []int32   `json:"system_ids"`
}

func (h *handlers) CreateCore(w http.ResponseWriter, r *http.Request) {
	var req createCoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	if err := slug.Validate(req.Slug); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if req.Name == "" {
		h.badRequest(w, "name is required")
		return
	}
	if req.OwnerTeamID == 0 {
		h.badRequest(w, "owner_team_id is required")
		return
	}
	if len(req.SystemIDs) == 0 {
		h.badRequest(w, "at least one system is required")
		return
	}

	created, err := h.store.CreateCore(r.Context(), core.NewCore{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
		Links:       req.Links,
		OwnerTeamID: req.OwnerTeamID,
		SystemIDs:   req.SystemIDs,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, created)
}

func (h *handlers) GetCore(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.GetCoreDetails(r.Context(), core.IDOrSlug(chi.URLParam(r, "core")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, d)
}

func (h *handlers) GetCoreSystems(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCore(r.Context(), core.IDOrSlug(chi.URLParam(r, "core")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	systems, err := h.store.GetCoreSystems(r.Context(), c.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, systems)
}

func (h *handlers) ListCoreReleases(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	c, err := h.store.GetCore(r.Context(), core.IDOrSlug(chi.URLParam(r, "core")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	releases, err := h.store.ListReleases(r.Context(), c.ID, page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, releases)
}

func (h *handlers) ListSystems(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	systems, err := h.store.ListSystems(r.Context(), page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, systems)
}

func (h *handlers) GetSystem(w http.ResponseWriter, r *http.Request) {
	sys, err := h.store.GetSystem(r.Context(), core.IDOrSlug(chi.URLParam(r, "system")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, sys)
}

func (h *handlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	teams, err := h.store.ListTeams(r.Context(), page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, teams)
}

func (h *handlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTeam(r.Context(), core.IDOrSlug(chi.URLParam(r, "team")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, t)
}

func (h *handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	platforms, err := h.store.ListPlatforms(r.Context(), page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, platforms)
}

func (h *handlers) GetPlatform(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPlatform(r.Context(), core.IDOrSlug(chi.URLParam(r, "platform")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, p)
}
