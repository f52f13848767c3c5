package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mycloudbox/mycloudbox/internal/ctxkeys"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/service"
	"github.com/mycloudbox/mycloudbox/internal/validation"
)

// multipart overhead allowed on top of the file itself
const multipartSlack = 1 << 20

type FileHandler struct {
	fileService *service.FileService
	constraints validation.UploadConstraints
}

func NewFileHandler(fileService *service.FileService, uploadMaxSize int64) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		constraints: validation.NewUploadConstraints(uploadMaxSize),
	}
}

type filesResponse struct {
	Files []*model.File `json:"files"`
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if h.constraints.MaxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.constraints.MaxSize+multipartSlack)
	}

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	err = validation.ValidateUpload(header, h.constraints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handleServiceError(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	created, err := h.fileService.Upload(r.Context(), user.ID, data, header.Filename, optionalID(r.FormValue("folderId")))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *FileHandler) MyFiles(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.fileService.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

func (h *FileHandler) Unfiled(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.fileService.ListUnfiled(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

func (h *FileHandler) ByFolder(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	files, err := h.fileService.ListByFolder(r.Context(), user.ID, r.PathValue("folderId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

// Public is intentionally unauthenticated: anyone holding the file id can
// read the name, format, URL and upload time.
func (h *FileHandler) Public(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.Public(r.Context(), r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	url, err := h.fileService.DownloadURL(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

type moveRequest struct {
	FolderID *string `json:"folderId"`
}

func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req moveRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var folderID *string
	if req.FolderID != nil {
		folderID = optionalID(*req.FolderID)
	}

	file, err := h.fileService.Move(r.Context(), user.ID, r.PathValue("id"), folderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.fileService.Delete(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "file deleted"})
}

// optionalID treats "" and "null" as unfiled.
func optionalID(v string) *string {
	if v == "" || v == "null" {
		return nil
	}
	return &v
}
