package handlers

import (
	"errors"
	"net/http"

	request "cotizador/internal/adapter/http/dto/request"
	response "cotizador/internal/adapter/http/dto/response"
	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase"
	"cotizador/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidQuotationPayload = pkg.NewDomainErrorSimple("INVALID_QUOTATION_INPUT", "Invalid quotation payload", http.StatusBadRequest)
)

// QuotationHandler handles HTTP requests for the quotation editing surface.
type QuotationHandler struct {
	usecase usecase.IQuotationUseCase
}

func NewQuotationHandler(uc usecase.IQuotationUseCase) *QuotationHandler {
	return &QuotationHandler{usecase: uc}
}

// CreateQuotation drafts a quotation for an event from the catalog snapshot
// the caller sends.
func (h *QuotationHandler) CreateQuotation(c *gin.Context) {
	var payload request.QuotationCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotationPayload.HTTPStatus, errInvalidQuotationPayload.ToHTTPError())
		return
	}

	quotation, summary, err := h.usecase.CreateQuotation(c.Request.Context(), payload.ToInput())
	if err != nil {
		appErr := mapQuotationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromQuotation(quotation, summary))
}

// GetQuotation returns the quotation plus a summary recomputed from its
// current inputs.
func (h *QuotationHandler) GetQuotation(c *gin.Context) {
	id := c.Param("id")

	quotation, summary, err := h.usecase.GetWithSummary(c.Request.Context(), id)
	if err != nil {
		appErr := mapQuotationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuotation(quotation, summary))
}

// PatchLineItems sets per-line quantities: zero removes the line.
func (h *QuotationHandler) PatchLineItems(c *gin.Context) {
	id := c.Param("id")

	var payload request.LineItemQuantitiesRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotationPayload.HTTPStatus, errInvalidQuotationPayload.ToHTTPError())
		return
	}

	quotation, summary, err := h.usecase.SetLineItemQuantities(c.Request.Context(), id, payload.Quantities)
	if err != nil {
		appErr := mapQuotationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuotation(quotation, summary))
}

// SelectTerms picks the commercial condition and payment method that every
// later recomputation and settlement will use.
func (h *QuotationHandler) SelectTerms(c *gin.Context) {
	id := c.Param("id")

	var payload request.TermsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotationPayload.HTTPStatus, errInvalidQuotationPayload.ToHTTPError())
		return
	}

	quotation, summary, err := h.usecase.SelectTerms(c.Request.Context(), id, payload.ConditionID, payload.PaymentMethodID)
	if err != nil {
		appErr := mapQuotationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuotation(quotation, summary))
}

// CancelQuotation cancels a pending quotation.
func (h *QuotationHandler) CancelQuotation(c *gin.Context) {
	id := c.Param("id")

	quotation, err := h.usecase.Cancel(c.Request.Context(), id)
	if err != nil {
		appErr := mapQuotationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuotation(quotation, entities.FinancialSummary{}))
}

// ListConditions returns the commercial condition catalog with the payment
// methods allowed under each condition.
func (h *QuotationHandler) ListConditions(c *gin.Context) {
	conditions, err := h.usecase.ListConditions(c.Request.Context())
	if err != nil {
		appErr := mapQuotationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	out := make([]response.CommercialConditionResponse, 0, len(conditions))
	for _, cond := range conditions {
		out = append(out, response.FromCommercialCondition(cond))
	}

	c.JSON(http.StatusOK, out)
}

func mapQuotationError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidQuotationID),
		errors.Is(err, usecase.ErrInvalidEventID),
		errors.Is(err, usecase.ErrNoLineItems),
		errors.Is(err, usecase.ErrInvalidQuantity):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrQuotationAlreadyExists):
		return pkg.NewDomainErrorSimple("QUOTATION_ALREADY_EXISTS", "A quotation already exists for this event", http.StatusConflict)
	case errors.Is(err, usecase.ErrQuotationNotPending):
		return pkg.NewDomainErrorSimple("QUOTATION_NOT_PENDING", "Quotation is no longer pending", http.StatusConflict)
	case errors.Is(err, usecase.ErrQuotationNotFound):
		return pkg.NewDomainErrorSimple("QUOTATION_NOT_FOUND", "Quotation not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrConditionNotFound):
		return pkg.NewDomainErrorSimple("CONDITION_NOT_FOUND", "Commercial condition not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentMethodNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_METHOD_NOT_FOUND", "Payment method not offered by this condition", http.StatusNotFound)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
