package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/pricing"
	"cotizador/internal/usecase/interfaces"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrQuotationNotFound      = errors.New("quotation not found")
	ErrQuotationAlreadyExists = errors.New("quotation already exists for this event")
	ErrQuotationNotPending    = errors.New("quotation is not pending")
	ErrInvalidQuotationID     = errors.New("invalid quotation id")
	ErrInvalidEventID         = errors.New("invalid event_id")
	ErrNoLineItems            = errors.New("quotation needs at least one line item")
	ErrInvalidQuantity        = errors.New("invalid line item quantity")
	ErrConditionNotFound      = errors.New("commercial condition not found")
	ErrPaymentMethodNotFound  = errors.New("payment method not found for condition")
)

// IQuotationUseCase exposes the quotation editing and terms-selection surface.
//
// Every read recomputes the financial summary from the current inputs through
// the shared pricing engine; the summary is never stored, so it can never be
// stale relative to the latest mutation.
type IQuotationUseCase interface {
	CreateQuotation(ctx context.Context, req CreateQuotationInput) (entities.Quotation, entities.FinancialSummary, error)
	GetWithSummary(ctx context.Context, id string) (entities.Quotation, entities.FinancialSummary, error)
	SetLineItemQuantities(ctx context.Context, id string, quantities map[string]int) (entities.Quotation, entities.FinancialSummary, error)
	SelectTerms(ctx context.Context, id, conditionID, paymentMethodID string) (entities.Quotation, entities.FinancialSummary, error)
	Cancel(ctx context.Context, id string) (entities.Quotation, error)
	ListConditions(ctx context.Context) ([]entities.CommercialCondition, error)
}

// CreateQuotationInput is the domain command for drafting a quotation from a
// catalog snapshot.
type CreateQuotationInput struct {
	EventID    string
	Name       string
	EventDate  time.Time
	ValidUntil time.Time
	LineItems  []entities.LineItem
}

type QuotationUseCase struct {
	repo                   interfaces.IQuotationRepository
	catalog                interfaces.ICommercialConditionCatalog
	salesCommissionPercent float64
}

var _ IQuotationUseCase = (*QuotationUseCase)(nil)

func NewQuotationUseCase(repo interfaces.IQuotationRepository, catalog interfaces.ICommercialConditionCatalog, salesCommissionPercent float64) *QuotationUseCase {
	return &QuotationUseCase{
		repo:                   repo,
		catalog:                catalog,
		salesCommissionPercent: salesCommissionPercent,
	}
}

func (u *QuotationUseCase) CreateQuotation(ctx context.Context, req CreateQuotationInput) (entities.Quotation, entities.FinancialSummary, error) {
	req.EventID = strings.TrimSpace(req.EventID)
	if req.EventID == "" {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrInvalidEventID
	}
	if len(req.LineItems) == 0 {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrNoLineItems
	}
	for _, li := range req.LineItems {
		if li.Quantity < 1 {
			return entities.Quotation{}, entities.FinancialSummary{}, ErrInvalidQuantity
		}
	}

	// Enforce: 1 quotation per event.
	if existing, err := u.repo.GetByEventID(ctx, req.EventID); err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	} else if existing.ID != "" {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrQuotationAlreadyExists
	}

	now := time.Now().UTC()
	validUntil := req.ValidUntil
	if validUntil.IsZero() {
		validUntil = now.AddDate(0, 0, 14)
	}

	q := entities.Quotation{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		Name:       strings.TrimSpace(req.Name),
		EventDate:  req.EventDate,
		ValidUntil: validUntil,
		Status:     entities.QuotationStatusPendiente,
		LineItems:  req.LineItems,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := u.repo.Create(ctx, q)
	if err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}
	summary := pricing.ComputeSummary(pricing.Input{
		LineItems:              created.LineItems,
		SalesCommissionPercent: u.salesCommissionPercent,
	})
	log.Printf("[quotation][usecase] created quotation_id=%s event_id=%s system_price=%.2f", created.ID, created.EventID, summary.SystemPrice)
	return created, summary, nil
}

// GetWithSummary loads the quotation and its reference data concurrently,
// then recomputes the summary once both reads have completed. No partial
// summary is ever produced.
func (u *QuotationUseCase) GetWithSummary(ctx context.Context, id string) (entities.Quotation, entities.FinancialSummary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrInvalidQuotationID
	}

	var q entities.Quotation
	var conditions []entities.CommercialCondition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		q, err = u.loadQuotation(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		conditions, err = u.catalog.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}

	summary, err := u.summarize(q, conditions)
	if err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}
	return q, summary, nil
}

func (u *QuotationUseCase) SetLineItemQuantities(ctx context.Context, id string, quantities map[string]int) (entities.Quotation, entities.FinancialSummary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrInvalidQuotationID
	}
	for _, qty := range quantities {
		if qty < 0 {
			return entities.Quotation{}, entities.FinancialSummary{}, ErrInvalidQuantity
		}
	}

	q, err := u.loadQuotation(ctx, id)
	if err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}
	if q.Status != entities.QuotationStatusPendiente {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrQuotationNotPending
	}

	// Quantity 0 removes the line; anything else replaces the quantity.
	items := make([]entities.LineItem, 0, len(q.LineItems))
	for _, li := range q.LineItems {
		qty, changed := quantities[li.ID]
		if !changed {
			items = append(items, li)
			continue
		}
		if qty == 0 {
			log.Printf("[quotation][usecase] removing line quotation_id=%s line_id=%s", id, li.ID)
			continue
		}
		li.Quantity = qty
		items = append(items, li)
	}

	updated, err := u.repo.UpdateLineItems(ctx, id, items)
	if err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}

	conditions, err := u.catalog.List(ctx)
	if err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}
	summary, err := u.summarize(updated, conditions)
	if err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}
	return updated, summary, nil
}

// SelectTerms is the public client-facing operation: pick a commercial
// condition and one of the payment methods it allows.
func (u *QuotationUseCase) SelectTerms(ctx context.Context, id, conditionID, paymentMethodID string) (entities.Quotation, entities.FinancialSummary, error) {
	id = strings.TrimSpace(id)
	conditionID = strings.TrimSpace(conditionID)
	if id == "" {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrInvalidQuotationID
	}
	if conditionID == "" {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrConditionNotFound
	}

	var q entities.Quotation
	var cond entities.CommercialCondition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		q, err = u.loadQuotation(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		cond, err = u.catalog.GetByID(gctx, conditionID)
		if err == nil && cond.ID == "" {
			return ErrConditionNotFound
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}

	if q.Status != entities.QuotationStatusPendiente {
		return entities.Quotation{}, entities.FinancialSummary{}, ErrQuotationNotPending
	}

	var method *entities.PaymentMethod
	if paymentMethodID = strings.TrimSpace(paymentMethodID); paymentMethodID != "" {
		m, ok := cond.MethodByID(paymentMethodID)
		if !ok {
			return entities.Quotation{}, entities.FinancialSummary{}, ErrPaymentMethodNotFound
		}
		method = &m
	}

	updated, err := u.repo.UpdateTerms(ctx, id, conditionID, paymentMethodID)
	if err != nil {
		return entities.Quotation{}, entities.FinancialSummary{}, err
	}

	summary := pricing.ComputeSummary(pricing.Input{
		LineItems:              updated.LineItems,
		Condition:              &cond,
		Method:                 method,
		SalesCommissionPercent: u.salesCommissionPercent,
	})
	log.Printf("[quotation][usecase] terms selected quotation_id=%s condition_id=%s method_id=%s final_price=%.2f",
		id, conditionID, paymentMethodID, summary.FinalPrice)
	return updated, summary, nil
}

func (u *QuotationUseCase) Cancel(ctx context.Context, id string) (entities.Quotation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quotation{}, ErrInvalidQuotationID
	}
	q, err := u.loadQuotation(ctx, id)
	if err != nil {
		return entities.Quotation{}, err
	}
	if q.Status != entities.QuotationStatusPendiente {
		return entities.Quotation{}, ErrQuotationNotPending
	}
	return u.repo.UpdateStatus(ctx, id, entities.QuotationStatusCancelada)
}

func (u *QuotationUseCase) ListConditions(ctx context.Context) ([]entities.CommercialCondition, error) {
	return u.catalog.List(ctx)
}

// loadQuotation fetches by id and applies the lazy expiry check: a pending
// quotation whose validity lapsed flips to vencida before it is returned.
func (u *QuotationUseCase) loadQuotation(ctx context.Context, id string) (entities.Quotation, error) {
	q, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Quotation{}, err
	}
	if q.ID == "" {
		return entities.Quotation{}, ErrQuotationNotFound
	}
	if q.Expired(time.Now().UTC()) {
		log.Printf("[quotation][usecase] quotation expired quotation_id=%s valid_until=%s", q.ID, q.ValidUntil.Format(time.RFC3339))
		return u.repo.UpdateStatus(ctx, id, entities.QuotationStatusVencida)
	}
	return q, nil
}

// summarize resolves the selected condition and method against the catalog
// snapshot and runs the pricing engine. A dangling selection is a hard error
// rather than a silent zero-commission summary.
func (u *QuotationUseCase) summarize(q entities.Quotation, conditions []entities.CommercialCondition) (entities.FinancialSummary, error) {
	in := pricing.Input{
		LineItems:              q.LineItems,
		SalesCommissionPercent: u.salesCommissionPercent,
	}
	if q.SelectedConditionID != "" {
		var cond *entities.CommercialCondition
		for i := range conditions {
			if conditions[i].ID == q.SelectedConditionID {
				cond = &conditions[i]
				break
			}
		}
		if cond == nil {
			return entities.FinancialSummary{}, ErrConditionNotFound
		}
		in.Condition = cond
		if q.SelectedPaymentMethodID != "" {
			m, ok := cond.MethodByID(q.SelectedPaymentMethodID)
			if !ok {
				return entities.FinancialSummary{}, ErrPaymentMethodNotFound
			}
			in.Method = &m
		}
	}
	return pricing.ComputeSummary(in), nil
}
