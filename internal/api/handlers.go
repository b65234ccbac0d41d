package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pathforge/rolegraph/internal/graph"
	"github.com/pathforge/rolegraph/internal/observability"
	"github.com/pathforge/rolegraph/internal/rolegraph"
	"github.com/pathforge/rolegraph/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeRepoError maps repository failures to HTTP codes: an unconnected
// driver is a 503, everything else a 502.
func writeRepoError(w http.ResponseWriter, err error) {
	code := types.CodeOf(err)
	status := http.StatusBadGateway
	if code == graph.ErrCodeNotConnected {
		status = http.StatusServiceUnavailable
	}

	var typed *types.Error
	message := "graph operation failed"
	if errors.As(err, &typed) {
		message = typed.Message
	}
	writeError(w, status, message, string(code))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Healthy",
		"graph":   s.health.Status(r.Context()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check(r.Context()).HealthStatus())
}

func (s *Server) handleGraphHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     report.Status(),
		"healthy":    report.Healthy,
		"category":   report.Category,
		"message":    report.Message,
		"hint":       report.Hint,
		"code":       report.Code,
		"checked_at": report.CheckedAt,
	})
}

// roleRequest is the POST /roles payload. Optional fields stay pointers so
// an omitted field never overwrites a stored value.
type roleRequest struct {
	ID          string         `json:"id"`
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Source      *string        `json:"source"`
	Version     *string        `json:"version"`
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", "")
		return
	}

	err := s.repo.UpsertRole(r.Context(), rolegraph.RoleUpsert{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
		Source:      req.Source,
		Version:     req.Version,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}

	role, err := s.repo.GetRoleByID(r.Context(), req.ID)
	if err != nil || role == nil {
		// The write succeeded; echo the request if the read-back failed.
		writeJSON(w, http.StatusCreated, req)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	limit := s.parseLimit(r.URL.Query().Get("limit"), 50, s.cfg.MaxListLimit)

	roles, err := s.repo.ListRoles(r.Context(), limit)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": roles, "count": len(roles)})
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	role, err := s.repo.GetRoleByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if role == nil {
		writeError(w, http.StatusNotFound, "role not found", "")
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// publicSuggestion is the outward adjacency shape. Ranking internals
// (score, rationale) stay private.
type publicSuggestion struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleRoleAdjacency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := rolegraph.AdjacencyQuery{
		UserID:        q.Get("userId"),
		CurrentRoleID: q.Get("currentRoleId"),
		TargetRoleID:  q.Get("targetRoleId"),
		Limit:         s.parseLimit(q.Get("limit"), 10, s.cfg.MaxAdjacency),
	}

	suggestions, err := s.repo.GetRoleAdjacency(r.Context(), query)
	if err != nil {
		// Suggestions are advisory; a backend failure degrades to empty.
		observability.WithTraceContext(r.Context(), s.logger).Warn("role adjacency query failed",
			"error", err,
			"current_role_id", query.CurrentRoleID,
		)
		writeJSON(w, http.StatusOK, map[string]any{"items": []publicSuggestion{}})
		return
	}

	items := make([]publicSuggestion, 0, len(suggestions))
	for _, sug := range suggestions {
		items = append(items, publicSuggestion{
			ID:          sug.ID,
			Name:        sug.Name,
			Description: sug.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// parseLimit clamps the limit query parameter to (0, max], falling back to
// def when absent or invalid.
func (s *Server) parseLimit(raw string, def, max int) int {
	limit := def
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
