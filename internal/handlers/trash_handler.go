package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tierfs-backend/internal/middleware"
	"tierfs-backend/internal/services"
)

type TrashHandler struct {
	trash *services.TrashService
}

func NewTrashHandler(trash *services.TrashService) *TrashHandler {
	return &TrashHandler{trash: trash}
}

// ListTrash returns active trash items.
func (h *TrashHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	items, err := h.trash.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// RestoreFromTrash restores one trashed file.
func (h *TrashHandler) RestoreFromTrash(w http.ResponseWriter, r *http.Request) {
	trashID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trash id")
		return
	}

	var userID *int
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		userID = &claims.UserID
	}

	if err := h.trash.RestoreFromTrash(r.Context(), trashID, userID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// PurgeTrash permanently deletes one trashed file and its storage objects.
func (h *TrashHandler) PurgeTrash(w http.ResponseWriter, r *http.Request) {
	trashID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trash id")
		return
	}

	if err := h.trash.Purge(r.Context(), trashID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

// PurgeExpired removes everything past its trash expiry.
func (h *TrashHandler) PurgeExpired(w http.ResponseWriter, r *http.Request) {
	purged, err := h.trash.PurgeExpired(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"purged": purged})
}
