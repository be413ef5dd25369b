package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadosgov/cnpq-api/internal/middleware"
	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
	"github.com/dadosgov/cnpq-api/internal/service"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
	"github.com/dadosgov/cnpq-api/pkg/response"
)

// PaymentHandler wires HTTP endpoints to the payment service.
type PaymentHandler struct {
	service *service.PaymentService
	exports *service.ExportService
}

// NewPaymentHandler creates a new handler.
func NewPaymentHandler(svc *service.PaymentService, exports *service.ExportService) *PaymentHandler {
	return &PaymentHandler{service: svc, exports: exports}
}

// List returns payments filtered by arbitrary query parameters.
func (h *PaymentHandler) List(c *gin.Context) {
	filters, req := listParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), filters, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// ListByBeneficiary returns payments of one beneficiary.
func (h *PaymentHandler) ListByBeneficiary(c *gin.Context) {
	h.listByFK(c, h.service.ListByBeneficiary)
}

// ListByInstitution returns payments directed to one institution.
func (h *PaymentHandler) ListByInstitution(c *gin.Context) {
	h.listByFK(c, h.service.ListByInstitution)
}

// ListByProgram returns payments issued under one program.
func (h *PaymentHandler) ListByProgram(c *gin.Context) {
	h.listByFK(c, h.service.ListByProgram)
}

func (h *PaymentHandler) listByFK(c *gin.Context, list func(ctx context.Context, id int64, filters query.Filters, req query.PageRequest) ([]models.Payment, query.Pagination, error)) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filters, req := listParams(c)
	items, pagination, err := list(c.Request.Context(), id, filters, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// Get returns one payment by ID.
func (h *PaymentHandler) Get(c *gin.Context) {
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

// Create inserts a payment. Admin only.
func (h *PaymentHandler) Create(c *gin.Context) {
	var input models.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update rewrites a payment. Admin only.
func (h *PaymentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, input, middleware.Principal(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete removes a payment. Admin only.
func (h *PaymentHandler) Delete(c *gin.Context) {
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

// Stats returns disbursement totals globally, by modality and by year.
func (h *PaymentHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export streams the filtered payment listing as CSV or PDF.
func (h *PaymentHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.exports.ExportPayments(c.Request.Context(), filterParams(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, "pagamentos", format, payload)
}
