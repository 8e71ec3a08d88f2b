package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"tierfs-backend/internal/middleware"
	"tierfs-backend/internal/services"
)

// maxUploadBytes caps multipart uploads at 1 GiB.
const maxUploadBytes = 1 << 30

type FileHandler struct {
	files *services.FileService
	trash *services.TrashService
}

func NewFileHandler(files *services.FileService, trash *services.TrashService) *FileHandler {
	return &FileHandler{files: files, trash: trash}
}

// ListFiles returns the active file catalog.
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	files, err := h.files.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// UploadFile accepts a multipart upload and stores it on the cache tier.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' form field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	created, err := h.files.Upload(r.Context(), header.Filename, contentType, file, header.Size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// DownloadFile streams file content, cache tier first.
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]

	reader, size, file, err := h.files.Download(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	io.Copy(w, reader)
}

// DeleteFile moves a file to the trash bin.
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]
	reason := r.URL.Query().Get("reason")

	var userID *int
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		userID = &claims.UserID
	}

	trashID, err := h.trash.MoveToTrash(r.Context(), fileID, userID, reason)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"trash_id": trashID})
}
