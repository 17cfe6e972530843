package handlers

import (
	"errors"
	"log"
	"net/http"

	request "cotizador/internal/adapter/http/dto/request"
	response "cotizador/internal/adapter/http/dto/response"
	"cotizador/internal/domain/authorization"
	"cotizador/internal/usecase"
	"cotizador/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidWizardPayload = pkg.NewDomainErrorSimple("INVALID_AUTHORIZATION_INPUT", "Invalid authorization payload", http.StatusBadRequest)
)

// AuthorizationHandler drives the authorization wizard over HTTP. One session
// per quotation; every transition returns the full session state.
type AuthorizationHandler struct {
	usecase usecase.IAuthorizationUseCase
}

func NewAuthorizationHandler(uc usecase.IAuthorizationUseCase) *AuthorizationHandler {
	return &AuthorizationHandler{usecase: uc}
}

// OpenWizard starts (or resumes) the wizard session for a quotation.
func (h *AuthorizationHandler) OpenWizard(c *gin.Context) {
	quotationID := c.Param("id")
	log.Printf("[authorization][handler] open quotation_id=%s", quotationID)

	state, err := h.usecase.Open(c.Request.Context(), quotationID)
	if err != nil {
		appErr := mapAuthorizationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromWizardState(state))
}

// GetWizard returns the current step and everything entered so far.
func (h *AuthorizationHandler) GetWizard(c *gin.Context) {
	quotationID := c.Param("id")

	state, err := h.usecase.Get(c.Request.Context(), quotationID)
	if err != nil {
		appErr := mapAuthorizationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromWizardState(state))
}

// NextStep applies the current step's payload and advances the session.
func (h *AuthorizationHandler) NextStep(c *gin.Context) {
	quotationID := c.Param("id")

	var payload request.WizardStepRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidWizardPayload.HTTPStatus, errInvalidWizardPayload.ToHTTPError())
		return
	}

	state, err := h.usecase.Next(c.Request.Context(), quotationID, payload.ToStepInput())
	if err != nil {
		log.Printf("[authorization][handler] next failed quotation_id=%s err=%v", quotationID, err)
		appErr := mapAuthorizationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromWizardState(state))
}

// BackStep returns to the previous step; entered data is retained.
func (h *AuthorizationHandler) BackStep(c *gin.Context) {
	quotationID := c.Param("id")

	state, err := h.usecase.Back(c.Request.Context(), quotationID)
	if err != nil {
		appErr := mapAuthorizationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromWizardState(state))
}

// CommitWizard authorizes the quotation from the preview step. At most one
// commit ever succeeds per quotation.
func (h *AuthorizationHandler) CommitWizard(c *gin.Context) {
	quotationID := c.Param("id")

	// committed_by is optional and the body may be empty altogether.
	var payload request.CommitRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		payload = request.CommitRequest{}
	}

	log.Printf("[authorization][handler] commit start quotation_id=%s", quotationID)
	record, err := h.usecase.Commit(c.Request.Context(), quotationID, payload.CommittedBy)
	if err != nil {
		log.Printf("[authorization][handler] commit failed quotation_id=%s err=%v", quotationID, err)
		appErr := mapAuthorizationError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[authorization][handler] commit success quotation_id=%s", quotationID)

	c.JSON(http.StatusCreated, response.FromAuthorizationRecord(record))
}

func mapAuthorizationError(err error) *pkg.AppError {
	var stepErr *authorization.StepError
	if errors.As(err, &stepErr) {
		return pkg.NewDomainErrorSimple("STEP_VALIDATION_FAILED", stepErr.Error(), http.StatusBadRequest)
	}

	switch {
	case errors.Is(err, usecase.ErrNoWizardSession):
		return pkg.NewDomainErrorSimple("NO_WIZARD_SESSION", "No authorization session for this quotation", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuotationNotFound):
		return pkg.NewDomainErrorSimple("QUOTATION_NOT_FOUND", "Quotation not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuotationNotPending):
		return pkg.NewDomainErrorSimple("QUOTATION_NOT_PENDING", "Quotation is no longer pending", http.StatusConflict)
	case errors.Is(err, usecase.ErrAlreadyAuthorized), errors.Is(err, authorization.ErrAlreadyCommitted):
		return pkg.NewDomainErrorSimple("ALREADY_AUTHORIZED", "Quotation already authorized", http.StatusConflict)
	case errors.Is(err, usecase.ErrCommitInFlight):
		return pkg.NewDomainErrorSimple("COMMIT_IN_FLIGHT", "A commit is already in flight for this quotation", http.StatusConflict)
	case errors.Is(err, usecase.ErrDateUnavailable):
		return pkg.NewDomainErrorSimple("DATE_UNAVAILABLE", "The event date is no longer available", http.StatusConflict)
	case errors.Is(err, usecase.ErrBankAccountNotFound):
		return pkg.NewDomainErrorSimple("BANK_ACCOUNT_NOT_FOUND", "Bank account not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrConditionNotFound):
		return pkg.NewDomainErrorSimple("CONDITION_NOT_FOUND", "Commercial condition not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentMethodNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_METHOD_NOT_FOUND", "Payment method not offered by this condition", http.StatusNotFound)
	case errors.Is(err, authorization.ErrNotAtPreview):
		return pkg.NewDomainErrorSimple("NOT_AT_PREVIEW", "Commit is only available from the preview step", http.StatusConflict)
	case errors.Is(err, authorization.ErrAtFirstStep):
		return pkg.NewDomainErrorSimple("AT_FIRST_STEP", "Already at the first step", http.StatusConflict)
	case errors.Is(err, usecase.ErrCommitFailed):
		return pkg.NewDomainError("COMMIT_FAILED", "Authorization commit rejected", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
