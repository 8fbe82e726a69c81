package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/auth"
	"github.com/dmitrijs2005/prodhub/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type createBranchRequest struct {
	Name string `json:"name"`
}

// queryLimit parses ?limit=; absent means 0, which services read as their
// default.
func queryLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", common.ErrorValidation)
	}
	return n, nil
}

func (h *Handler) listPublicRepositories(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.svc.Repositories.ListPublic(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) listUserRepositories(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Repositories.ListByOwner(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getRepository(w http.ResponseWriter, r *http.Request) {
	repo, err := h.svc.Repositories.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

func (h *Handler) createRepository(w http.ResponseWriter, r *http.Request) {
	var in services.CreateRepositoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	repo, err := h.svc.Repositories.Create(r.Context(), auth.UserIDFromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, repo)
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Repositories.ListBranches(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	var req createBranchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.svc.Repositories.CreateBranch(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) starred(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.Stars.Starred(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"starred": ok})
}

func (h *Handler) star(w http.ResponseWriter, r *http.Request) {
	repo, err := h.svc.Stars.Star(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

func (h *Handler) unstar(w http.ResponseWriter, r *http.Request) {
	repo, err := h.svc.Stars.Unstar(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repo)
}
