package handlers

import (
	"net/http"
	"strconv"

	"tierfs-backend/internal/models"
	"tierfs-backend/internal/services"
)

type ConsistencyHandler struct {
	service *services.ConsistencyService
}

func NewConsistencyHandler(service *services.ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{service: service}
}

// CheckConsistency runs one reconciliation pass over a window of storage
// objects. Query parameters: storage_type (CACHE|NAS, optional), limit,
// offset, sample (true fetches a random sample instead of a page).
func (h *ConsistencyHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	params := services.CheckParams{}
	q := r.URL.Query()

	if raw := q.Get("storage_type"); raw != "" {
		storageType := models.StorageType(raw)
		if !storageType.Valid() {
			writeError(w, http.StatusBadRequest, "storage_type must be CACHE or NAS")
			return
		}
		params.StorageType = &storageType
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		params.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		params.Offset = offset
	}

	params.Sample = q.Get("sample") == "true"

	result, err := h.service.CheckConsistency(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
