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

// ProgramHandler wires HTTP endpoints to the program service.
type ProgramHandler struct {
	service *service.ProgramService
	exports *service.ExportService
}

// NewProgramHandler creates a new handler.
func NewProgramHandler(svc *service.ProgramService, exports *service.ExportService) *ProgramHandler {
	return &ProgramHandler{service: svc, exports: exports}
}

// List returns programs filtered by arbitrary query parameters.
func (h *ProgramHandler) List(c *gin.Context) {
	filters, req := listParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), filters, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// Get returns one program by ID.
func (h *ProgramHandler) Get(c *gin.Context) {
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

// Create inserts a program. Admin only.
func (h *ProgramHandler) Create(c *gin.Context) {
	var input models.ProgramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update rewrites a program. Admin only.
func (h *ProgramHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.ProgramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete removes a program. Admin only.
func (h *ProgramHandler) Delete(c *gin.Context) {
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

// Stats returns program counts grouped by knowledge area.
func (h *ProgramHandler) Stats(c *gin.Context) {
	stats, err := h.service.AreaStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export streams the filtered program listing as CSV or PDF.
func (h *ProgramHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.exports.ExportPrograms(c.Request.Context(), filterParams(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, "programas", format, payload)
}
