package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/auth"
	"github.com/dmitrijs2005/prodhub/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// getProfile serves /users/{userID}; "me" names the caller. Email is only
// shown to the profile's owner.
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	viewerID := auth.UserIDFromContext(r.Context())
	userID := chi.URLParam(r, "userID")
	if userID == "" || userID == "me" {
		if viewerID == "" {
			h.writeError(w, r, fmt.Errorf("%w: missing access token", common.ErrorUnauthorized))
			return
		}
		userID = viewerID
	}

	u, err := h.svc.Users.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if u.ID != viewerID {
		public := *u
		public.Email = ""
		u = &public
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.CreateProfile(r.Context(), auth.UserIDFromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
