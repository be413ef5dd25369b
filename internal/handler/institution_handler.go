package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadosgov/cnpq-api/internal/middleware"
	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/service"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
	"github.com/dadosgov/cnpq-api/pkg/response"
)

// InstitutionHandler wires HTTP endpoints to the institution service.
type InstitutionHandler struct {
	service *service.InstitutionService
	exports *service.ExportService
}

// NewInstitutionHandler creates a new handler.
func NewInstitutionHandler(svc *service.InstitutionService, exports *service.ExportService) *InstitutionHandler {
	return &InstitutionHandler{service: svc, exports: exports}
}

// List returns institutions filtered by arbitrary query parameters.
func (h *InstitutionHandler) List(c *gin.Context) {
	filters, req := listParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), filters, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// Get returns one institution by ID.
func (h *InstitutionHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create inserts an institution. Admin only.
func (h *InstitutionHandler) Create(c *gin.Context) {
	var input models.InstitutionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid institution payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update rewrites an institution. Admin only.
func (h *InstitutionHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.InstitutionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid institution payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete removes an institution. Admin only.
func (h *InstitutionHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, middleware.Principal(c), c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats returns institution counts grouped by UF and country.
func (h *InstitutionHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export streams the filtered institution listing as CSV or PDF.
func (h *InstitutionHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.exports.ExportInstitutions(c.Request.Context(), filterParams(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, "instituicoes", format, payload)
}
