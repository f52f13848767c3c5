package handler

import (
	"net/http"
	"strconv"

	"github.com/mycloudbox/mycloudbox/internal/ctxkeys"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/service"
)

type FolderHandler struct {
	folderService *service.FolderService
}

func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

type folderRequest struct {
	Name string `json:"name"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req folderRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) MyFolders(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	folders, err := h.folderService.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Folders []*model.Folder `json:"folders"`
	}{Folders: folders})
}

func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req folderRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.Rename(r.Context(), user.ID, r.PathValue("id"), req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// Delete detaches the folder's files by default. With deleteFiles=true the
// files are deleted from storage first and the response carries the report.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	deleteFiles := false
	if v := r.URL.Query().Get("deleteFiles"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "deleteFiles must be true or false")
			return
		}
		deleteFiles = parsed
	}

	result, err := h.folderService.Delete(r.Context(), user.ID, r.PathValue("id"), deleteFiles)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
