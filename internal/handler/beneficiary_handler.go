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

// BeneficiaryHandler wires HTTP endpoints to the beneficiary service.
type BeneficiaryHandler struct {
	service *service.BeneficiaryService
	exports *service.ExportService
}

// NewBeneficiaryHandler creates a new handler.
func NewBeneficiaryHandler(svc *service.BeneficiaryService, exports *service.ExportService) *BeneficiaryHandler {
	return &BeneficiaryHandler{service: svc, exports: exports}
}

// List returns beneficiaries filtered by arbitrary query parameters.
func (h *BeneficiaryHandler) List(c *gin.Context) {
	filters, req := listParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), filters, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// Get returns one beneficiary by ID.
func (h *BeneficiaryHandler) Get(c *gin.Context) {
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

// Create inserts a beneficiary. Admin only.
func (h *BeneficiaryHandler) Create(c *gin.Context) {
	var input models.BeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid beneficiary payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update rewrites a beneficiary. Admin only.
func (h *BeneficiaryHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.BeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid beneficiary payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete removes a beneficiary. Admin only.
func (h *BeneficiaryHandler) Delete(c *gin.Context) {
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

// Export streams the filtered beneficiary listing as CSV or PDF.
func (h *BeneficiaryHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.exports.ExportBeneficiaries(c.Request.Context(), filterParams(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, "beneficiarios", format, payload)
}
