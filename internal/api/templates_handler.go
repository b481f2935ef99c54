package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labelpress/labelpress/internal/api/shared"
	"github.com/labelpress/labelpress/internal/template"
)

// TemplateService is the slice of the template service the handlers need.
type TemplateService interface {
	List() ([]template.Info, error)
	Describe(name string) (template.Info, error)
}

// TemplatesHandler handles template discovery requests.
type TemplatesHandler struct {
	templates TemplateService
}

// NewTemplatesHandler creates a TemplatesHandler.
func NewTemplatesHandler(templates TemplateService) *TemplatesHandler {
	return &TemplatesHandler{templates: templates}
}

// ListTemplates handles GET /labels/templates requests.
func (h *TemplatesHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	infos, err := h.templates.List()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to read templates", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, infos)
}

// GetTemplate handles GET /labels/templates/{templateName} requests.
func (h *TemplatesHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "templateName")

	info, err := h.templates.Describe(name)
	if err != nil {
		switch {
		case errors.Is(err, template.ErrNotFound), errors.Is(err, template.ErrInvalidName):
			shared.RespondWithError(w, r, http.StatusNotFound, "Template not found: "+name)
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to read template", err)
		}
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, info)
}
