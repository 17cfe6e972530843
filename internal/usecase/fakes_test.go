package usecase

import (
	"context"
	"encoding/json"
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/pricing"
)

// Hand-rolled port fakes shared by the use case tests. Each fake keeps state
// in maps and exposes err fields to force failures on specific calls.

type fakeQuotationRepo struct {
	quotations map[string]entities.Quotation

	getErr          error
	updateStatusErr error
	statusUpdates   []entities.QuotationStatus
}

func newFakeQuotationRepo(qs ...entities.Quotation) *fakeQuotationRepo {
	r := &fakeQuotationRepo{quotations: make(map[string]entities.Quotation)}
	for _, q := range qs {
		r.quotations[q.ID] = q
	}
	return r
}

func (r *fakeQuotationRepo) Create(_ context.Context, q entities.Quotation) (entities.Quotation, error) {
	if _, exists := r.quotations[q.ID]; exists {
		return entities.Quotation{}, nil
	}
	r.quotations[q.ID] = q
	return q, nil
}

func (r *fakeQuotationRepo) GetByID(_ context.Context, id string) (entities.Quotation, error) {
	if r.getErr != nil {
		return entities.Quotation{}, r.getErr
	}
	return r.quotations[id], nil
}

func (r *fakeQuotationRepo) GetByEventID(_ context.Context, eventID string) (entities.Quotation, error) {
	for _, q := range r.quotations {
		if q.EventID == eventID {
			return q, nil
		}
	}
	return entities.Quotation{}, nil
}

func (r *fakeQuotationRepo) UpdateLineItems(_ context.Context, id string, items []entities.LineItem) (entities.Quotation, error) {
	q := r.quotations[id]
	q.LineItems = items
	q.UpdatedAt = time.Now().UTC()
	r.quotations[id] = q
	return q, nil
}

func (r *fakeQuotationRepo) UpdateTerms(_ context.Context, id, conditionID, paymentMethodID string) (entities.Quotation, error) {
	q := r.quotations[id]
	q.SelectedConditionID = conditionID
	q.SelectedPaymentMethodID = paymentMethodID
	q.UpdatedAt = time.Now().UTC()
	r.quotations[id] = q
	return q, nil
}

func (r *fakeQuotationRepo) UpdateStatus(_ context.Context, id string, status entities.QuotationStatus) (entities.Quotation, error) {
	if r.updateStatusErr != nil {
		return entities.Quotation{}, r.updateStatusErr
	}
	q := r.quotations[id]
	q.Status = status
	q.UpdatedAt = time.Now().UTC()
	r.quotations[id] = q
	r.statusUpdates = append(r.statusUpdates, status)
	return q, nil
}

type fakeConditionCatalog struct {
	conditions []entities.CommercialCondition
	listErr    error
}

func (c *fakeConditionCatalog) List(_ context.Context) ([]entities.CommercialCondition, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.conditions, nil
}

func (c *fakeConditionCatalog) GetByID(_ context.Context, id string) (entities.CommercialCondition, error) {
	for _, cond := range c.conditions {
		if cond.ID == id {
			return cond, nil
		}
	}
	return entities.CommercialCondition{}, nil
}

type fakeBankAccountCatalog struct {
	accounts []entities.BankAccount
}

func (c *fakeBankAccountCatalog) List(_ context.Context) ([]entities.BankAccount, error) {
	return c.accounts, nil
}

type fakeAvailability struct {
	available bool
	err       error
	calls     int
}

func (a *fakeAvailability) IsDateAvailable(_ context.Context, _ time.Time, _ string) (bool, error) {
	a.calls++
	if a.err != nil {
		return false, a.err
	}
	return a.available, nil
}

type fakeAuthorizationRepo struct {
	records   map[string]entities.AuthorizationRecord
	createErr error
}

func newFakeAuthorizationRepo() *fakeAuthorizationRepo {
	return &fakeAuthorizationRepo{records: make(map[string]entities.AuthorizationRecord)}
}

func (r *fakeAuthorizationRepo) Create(_ context.Context, rec entities.AuthorizationRecord) (entities.AuthorizationRecord, error) {
	if r.createErr != nil {
		return entities.AuthorizationRecord{}, r.createErr
	}
	// Conditional write: an existing record wins and the put returns zero.
	if _, exists := r.records[rec.QuotationID]; exists {
		return entities.AuthorizationRecord{}, nil
	}
	r.records[rec.QuotationID] = rec
	return rec, nil
}

func (r *fakeAuthorizationRepo) GetByQuotationID(_ context.Context, quotationID string) (entities.AuthorizationRecord, error) {
	return r.records[quotationID], nil
}

type fakePaymentRepo struct {
	payments  []entities.Payment
	createErr error
}

func (r *fakePaymentRepo) Create(_ context.Context, p entities.Payment) (entities.Payment, error) {
	if r.createErr != nil {
		return entities.Payment{}, r.createErr
	}
	r.payments = append(r.payments, p)
	return p, nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (entities.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return entities.Payment{}, nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, id string, status entities.PaymentStatus) (entities.Payment, error) {
	for i, p := range r.payments {
		if p.ID == id {
			r.payments[i].Status = status
			return r.payments[i], nil
		}
	}
	return entities.Payment{}, nil
}

func (r *fakePaymentRepo) ListByQuotationID(_ context.Context, quotationID string) ([]entities.Payment, error) {
	var out []entities.Payment
	for _, p := range r.payments {
		if p.QuotationID == quotationID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeGateway struct {
	handle    string
	status    string
	raw       json.RawMessage
	createErr error

	createdAmounts []float64
	cancelled      []string
	cancelErr      error
}

func (g *fakeGateway) CreateSettlement(_ context.Context, amount float64, _ pricing.SettlementMetadata) (string, string, json.RawMessage, error) {
	if g.createErr != nil {
		return "", "", nil, g.createErr
	}
	g.createdAmounts = append(g.createdAmounts, amount)
	raw := g.raw
	if raw == nil {
		raw = json.RawMessage(`{"id":123}`)
	}
	return g.handle, g.status, raw, nil
}

func (g *fakeGateway) CancelSettlement(_ context.Context, handle string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, handle)
	return nil
}
