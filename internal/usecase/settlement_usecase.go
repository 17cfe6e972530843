package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/pricing"
	"cotizador/internal/usecase/interfaces"
)

var (
	ErrSettlementInFlight         = errors.New("a settlement is already in flight for this quotation")
	ErrAlreadySettled             = errors.New("quotation already has an approved payment")
	ErrNoTermsSelected            = errors.New("quotation has no condition or payment method selected")
	ErrNothingToCollect           = errors.New("nothing to collect for this quotation")
	ErrSettlementNotReconciled    = errors.New("settlement amounts do not reconcile")
	ErrPaymentNotFound            = errors.New("payment not found")
	ErrPaymentGatewayBadRequest   = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized = errors.New("payment gateway unauthorized")
	ErrPaymentGatewayRejected     = errors.New("payment gateway rejected the charge")
)

// ISettlementUseCase charges the collect-now leg of a quotation through the
// external gateway and records the resulting payment exactly once.
type ISettlementUseCase interface {
	CreateSettlement(ctx context.Context, quotationID string) (entities.Payment, pricing.Settlement, error)
	CancelSettlement(ctx context.Context, quotationID, handle string) error
	LatestPayment(ctx context.Context, quotationID string) (entities.Payment, error)
}

type SettlementUseCase struct {
	quotations             interfaces.IQuotationRepository
	catalog                interfaces.ICommercialConditionCatalog
	payments               interfaces.IPaymentRepository
	gateway                interfaces.IPaymentGateway
	salesCommissionPercent float64

	mu       sync.Mutex
	inFlight map[string]string // quotation id -> gateway handle
}

var _ ISettlementUseCase = (*SettlementUseCase)(nil)

func NewSettlementUseCase(
	quotations interfaces.IQuotationRepository,
	catalog interfaces.ICommercialConditionCatalog,
	payments interfaces.IPaymentRepository,
	gateway interfaces.IPaymentGateway,
	salesCommissionPercent float64,
) *SettlementUseCase {
	return &SettlementUseCase{
		quotations:             quotations,
		catalog:                catalog,
		payments:               payments,
		gateway:                gateway,
		salesCommissionPercent: salesCommissionPercent,
		inFlight:               make(map[string]string),
	}
}

// CreateSettlement recomputes the summary from current inputs, builds the
// gateway charge and submits it. At most one settlement per quotation may be
// in flight; a failed gateway call leaves no Payment record behind.
func (s *SettlementUseCase) CreateSettlement(ctx context.Context, quotationID string) (entities.Payment, pricing.Settlement, error) {
	quotationID = strings.TrimSpace(quotationID)
	if quotationID == "" {
		return entities.Payment{}, pricing.Settlement{}, ErrInvalidQuotationID
	}
	if s.gateway == nil {
		return entities.Payment{}, pricing.Settlement{}, errors.New("payment gateway not configured")
	}
	log.Printf("[settlement][usecase] create start quotation_id=%s", quotationID)

	s.mu.Lock()
	if _, busy := s.inFlight[quotationID]; busy {
		s.mu.Unlock()
		return entities.Payment{}, pricing.Settlement{}, ErrSettlementInFlight
	}
	s.inFlight[quotationID] = ""
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, quotationID)
		s.mu.Unlock()
	}()

	q, err := s.quotations.GetByID(ctx, quotationID)
	if err != nil {
		return entities.Payment{}, pricing.Settlement{}, err
	}
	if q.ID == "" {
		return entities.Payment{}, pricing.Settlement{}, ErrQuotationNotFound
	}
	if q.Status == entities.QuotationStatusCancelada || q.Status == entities.QuotationStatusVencida {
		return entities.Payment{}, pricing.Settlement{}, ErrQuotationNotPending
	}
	if q.SelectedConditionID == "" || q.SelectedPaymentMethodID == "" {
		return entities.Payment{}, pricing.Settlement{}, ErrNoTermsSelected
	}

	existing, err := s.payments.ListByQuotationID(ctx, quotationID)
	if err != nil {
		return entities.Payment{}, pricing.Settlement{}, err
	}
	for _, p := range existing {
		switch p.Status {
		case entities.PaymentStatusAprobado:
			return entities.Payment{}, pricing.Settlement{}, ErrAlreadySettled
		case entities.PaymentStatusPendiente:
			// A pendiente payment is a live charge at the provider. Creating
			// another would double-charge; the old handle must be cancelled
			// first.
			return entities.Payment{}, pricing.Settlement{}, ErrSettlementInFlight
		}
	}

	cond, err := s.catalog.GetByID(ctx, q.SelectedConditionID)
	if err != nil {
		return entities.Payment{}, pricing.Settlement{}, err
	}
	if cond.ID == "" {
		return entities.Payment{}, pricing.Settlement{}, ErrConditionNotFound
	}
	method, ok := cond.MethodByID(q.SelectedPaymentMethodID)
	if !ok {
		return entities.Payment{}, pricing.Settlement{}, ErrPaymentMethodNotFound
	}

	summary := pricing.ComputeSummary(pricing.Input{
		LineItems:              q.LineItems,
		Condition:              &cond,
		Method:                 &method,
		SalesCommissionPercent: s.salesCommissionPercent,
	})
	settlement := pricing.BuildSettlement(quotationID, summary, method)
	if settlement.GrossAmount <= 0 {
		return entities.Payment{}, pricing.Settlement{}, ErrNothingToCollect
	}
	if !settlement.Reconciled(summary.ProcessorCommissionAmount) {
		// Never submit a charge whose legs do not add up.
		log.Printf("[settlement][usecase] reconciliation failed quotation_id=%s base=%.2f gross=%.2f fee=%.2f",
			quotationID, settlement.BaseAmount, settlement.GrossAmount, summary.ProcessorCommissionAmount)
		return entities.Payment{}, pricing.Settlement{}, ErrSettlementNotReconciled
	}

	log.Printf("[settlement][usecase] calling gateway quotation_id=%s gross=%.2f kind=%s",
		quotationID, settlement.GrossAmount, method.ProcessorKind)
	handle, providerStatus, raw, err := s.gateway.CreateSettlement(ctx, settlement.GrossAmount, settlement.Metadata)
	if err != nil {
		log.Printf("[settlement][usecase] gateway failed quotation_id=%s err=%v", quotationID, err)
		return entities.Payment{}, pricing.Settlement{}, mapGatewayError(err)
	}

	s.mu.Lock()
	s.inFlight[quotationID] = handle
	s.mu.Unlock()

	status := mapProviderStatus(providerStatus)
	if status == entities.PaymentStatusRechazado {
		return entities.Payment{}, pricing.Settlement{}, ErrPaymentGatewayRejected
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Printf("[settlement][usecase] provider response unmarshal failed quotation_id=%s err=%v", quotationID, err)
	}

	p := entities.Payment{
		ID:                handle,
		QuotationID:       quotationID,
		Amount:            settlement.GrossAmount,
		Concept:           settlement.Metadata.Concept,
		Date:              time.Now().UTC(),
		Status:            status,
		GatewayPayloadRaw: raw,
		GatewayPayload:    parsed,
	}
	created, err := s.payments.Create(ctx, p)
	if err != nil {
		log.Printf("[settlement][usecase] payment persist failed quotation_id=%s payment_id=%s err=%v", quotationID, p.ID, err)
		return entities.Payment{}, pricing.Settlement{}, err
	}
	log.Printf("[settlement][usecase] create success quotation_id=%s payment_id=%s status=%s", quotationID, created.ID, created.Status)
	return created, settlement, nil
}

// CancelSettlement voids an attempt the user walked away from. The gateway is
// told to cancel so no pending charge is left unreconciled.
func (s *SettlementUseCase) CancelSettlement(ctx context.Context, quotationID, handle string) error {
	quotationID = strings.TrimSpace(quotationID)
	handle = strings.TrimSpace(handle)
	if quotationID == "" {
		return ErrInvalidQuotationID
	}
	if handle == "" {
		return ErrPaymentNotFound
	}
	if err := s.gateway.CancelSettlement(ctx, handle); err != nil {
		return mapGatewayError(err)
	}
	// If the attempt was already recorded as pendiente, close it out so it
	// stops blocking a new settlement.
	if p, err := s.payments.GetByID(ctx, handle); err == nil && p.ID != "" && p.Status == entities.PaymentStatusPendiente {
		if _, err := s.payments.UpdateStatus(ctx, handle, entities.PaymentStatusRechazado); err != nil {
			log.Printf("[settlement][usecase] cancel persisted payment update failed quotation_id=%s handle=%s err=%v", quotationID, handle, err)
			return err
		}
	}
	s.mu.Lock()
	delete(s.inFlight, quotationID)
	s.mu.Unlock()
	log.Printf("[settlement][usecase] cancelled quotation_id=%s handle=%s", quotationID, handle)
	return nil
}

// LatestPayment returns the most recent payment for a quotation.
func (s *SettlementUseCase) LatestPayment(ctx context.Context, quotationID string) (entities.Payment, error) {
	quotationID = strings.TrimSpace(quotationID)
	if quotationID == "" {
		return entities.Payment{}, ErrInvalidQuotationID
	}
	payments, err := s.payments.ListByQuotationID(ctx, quotationID)
	if err != nil {
		return entities.Payment{}, err
	}
	if len(payments) == 0 {
		return entities.Payment{}, ErrPaymentNotFound
	}
	latest := payments[0]
	for _, p := range payments[1:] {
		if p.Date.After(latest.Date) {
			latest = p
		}
	}
	return latest, nil
}

func mapProviderStatus(providerStatus string) entities.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved", "accredited":
		return entities.PaymentStatusAprobado
	case "rejected", "cancelled", "refunded", "charged_back":
		return entities.PaymentStatusRechazado
	default:
		return entities.PaymentStatusPendiente
	}
}

func mapGatewayError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "\"error\":\"unauthorized\"") || strings.Contains(msg, "\"status\":401"):
		return ErrPaymentGatewayUnauthorized
	case strings.Contains(msg, "\"error\":\"bad_request\"") || strings.Contains(msg, "\"status\":400"):
		return ErrPaymentGatewayBadRequest
	default:
		return err
	}
}
