package handler

import (
	"errors"
	"net/http"

	"github.com/mycloudbox/mycloudbox/internal/service"
	"github.com/mycloudbox/mycloudbox/internal/ui"
)

type ShareHandler struct {
	fileService *service.FileService
	appName     string
}

func NewShareHandler(fileService *service.FileService, appName string) *ShareHandler {
	return &ShareHandler{
		fileService: fileService,
		appName:     appName,
	}
}

// SharePage renders the public view of a file. No login is required.
func (h *ShareHandler) SharePage(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.Public(r.Context(), r.PathValue("id"))
	if errors.Is(err, service.ErrNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFoundPage(h.appName))
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	ui.Render(w, r, ui.SharePage(h.appName, file))
}
