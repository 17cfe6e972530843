package handlers

import (
	"errors"
	"log"
	"net/http"

	response "cotizador/internal/adapter/http/dto/response"
	"cotizador/internal/usecase"
	"cotizador/pkg"

	"github.com/gin-gonic/gin"
)

// SettlementHandler handles HTTP requests that charge the collect-now leg of
// a quotation through the payment gateway.
type SettlementHandler struct {
	usecase usecase.ISettlementUseCase
}

func NewSettlementHandler(uc usecase.ISettlementUseCase) *SettlementHandler {
	return &SettlementHandler{usecase: uc}
}

// CreateSettlement recomputes the summary, builds the gateway charge and
// records the resulting payment.
func (h *SettlementHandler) CreateSettlement(c *gin.Context) {
	quotationID := c.Param("id")
	log.Printf("[settlement][handler] create start quotation_id=%s", quotationID)

	payment, settlement, err := h.usecase.CreateSettlement(c.Request.Context(), quotationID)
	if err != nil {
		log.Printf("[settlement][handler] create failed quotation_id=%s err=%v", quotationID, err)
		appErr := mapSettlementError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[settlement][handler] create success quotation_id=%s payment_id=%s status=%s gross=%.2f",
		quotationID, payment.ID, payment.Status, settlement.GrossAmount)

	c.JSON(http.StatusCreated, response.FromSettlement(payment, settlement))
}

// CancelSettlement voids an abandoned gateway attempt by its handle.
func (h *SettlementHandler) CancelSettlement(c *gin.Context) {
	quotationID := c.Param("id")
	handle := c.Param("handle")
	log.Printf("[settlement][handler] cancel start quotation_id=%s handle=%s", quotationID, handle)

	if err := h.usecase.CancelSettlement(c.Request.Context(), quotationID, handle); err != nil {
		log.Printf("[settlement][handler] cancel failed quotation_id=%s handle=%s err=%v", quotationID, handle, err)
		appErr := mapSettlementError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.Status(http.StatusNoContent)
}

// GetLatestPayment returns the most recent payment recorded for a quotation.
func (h *SettlementHandler) GetLatestPayment(c *gin.Context) {
	quotationID := c.Param("id")

	payment, err := h.usecase.LatestPayment(c.Request.Context(), quotationID)
	if err != nil {
		appErr := mapSettlementError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(payment))
}

func mapSettlementError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidQuotationID), errors.Is(err, usecase.ErrPaymentGatewayBadRequest):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayUnauthorized):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_UNAUTHORIZED", "Payment provider unauthorized", http.StatusUnauthorized)
	case errors.Is(err, usecase.ErrPaymentGatewayRejected):
		return pkg.NewDomainErrorSimple("PAYMENT_REJECTED", "Payment provider rejected the charge", http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrQuotationNotFound):
		return pkg.NewDomainErrorSimple("QUOTATION_NOT_FOUND", "Quotation not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuotationNotPending):
		return pkg.NewDomainErrorSimple("QUOTATION_NOT_PENDING", "Quotation is no longer pending", http.StatusConflict)
	case errors.Is(err, usecase.ErrNoTermsSelected):
		return pkg.NewDomainErrorSimple("NO_TERMS_SELECTED", "Quotation has no condition or payment method selected", http.StatusConflict)
	case errors.Is(err, usecase.ErrNothingToCollect):
		return pkg.NewDomainErrorSimple("NOTHING_TO_COLLECT", "Nothing to collect for this quotation", http.StatusConflict)
	case errors.Is(err, usecase.ErrSettlementInFlight):
		return pkg.NewDomainErrorSimple("SETTLEMENT_IN_FLIGHT", "A settlement is already in flight for this quotation", http.StatusConflict)
	case errors.Is(err, usecase.ErrAlreadySettled):
		return pkg.NewDomainErrorSimple("ALREADY_SETTLED", "Quotation already has an approved payment", http.StatusConflict)
	case errors.Is(err, usecase.ErrSettlementNotReconciled):
		return pkg.NewDomainError("SETTLEMENT_NOT_RECONCILED", "Settlement amounts do not reconcile", err, http.StatusBadGateway)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
