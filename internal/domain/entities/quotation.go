package entities

import "time"

// QuotationStatus represents the lifecycle of a quotation (cotización).
//
// Domain notes:
//   - Aprobada and Cancelada are terminal. Vencida is reached when ValidUntil
//     passes before authorization; the check is lazy, applied on read.
//   - Aprobada is only reached through the authorization workflow commit.
type QuotationStatus string

const (
	QuotationStatusPendiente QuotationStatus = "pendiente"
	QuotationStatusAprobada  QuotationStatus = "aprobada"
	QuotationStatusVencida   QuotationStatus = "vencida"
	QuotationStatusCancelada QuotationStatus = "cancelada"
)

// Terminal reports whether no further edits or transitions are allowed.
func (s QuotationStatus) Terminal() bool {
	return s == QuotationStatusAprobada || s == QuotationStatusCancelada || s == QuotationStatusVencida
}

// Quotation is the draft-to-contract document for one event.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (event_id-index): event_id
//   - Line items are stored inline (owned by the quotation).
//
// The financial summary is derived data: it is recomputed from
// {line items, condition, method} on every read and never persisted.
type Quotation struct {
	ID                      string          `json:"id"`
	EventID                 string          `json:"event_id"`
	Name                    string          `json:"name"`
	EventDate               time.Time       `json:"event_date"`
	ValidUntil              time.Time       `json:"valid_until"`
	Status                  QuotationStatus `json:"status"`
	LineItems               []LineItem      `json:"line_items"`
	SelectedConditionID     string          `json:"selected_condition_id,omitempty"`
	SelectedPaymentMethodID string          `json:"selected_payment_method_id,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// Expired reports whether the quotation's validity window has lapsed.
func (q Quotation) Expired(now time.Time) bool {
	return q.Status == QuotationStatusPendiente && !q.ValidUntil.IsZero() && now.After(q.ValidUntil)
}
