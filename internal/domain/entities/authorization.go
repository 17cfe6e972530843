package entities

import "time"

// DiscountKind tags how an itemized wizard discount is expressed.
type DiscountKind string

const (
	DiscountKindPercent DiscountKind = "percent"
	DiscountKindFixed   DiscountKind = "fixed"
)

// AdjustmentDiscount is one itemized discount added during the commercial
// adjustment step. Percent discounts apply to the original total, not the
// running one, so removing a discount is always exactly reversible.
type AdjustmentDiscount struct {
	Concept string       `json:"concept"`
	Kind    DiscountKind `json:"kind"`
	Value   float64      `json:"value"`
}

// Amount resolves the discount to money against the original total.
func (d AdjustmentDiscount) Amount(totalOriginal float64) float64 {
	if d.Kind == DiscountKindPercent {
		return totalOriginal * d.Value / 100
	}
	return d.Value
}

// CommercialAdjustment accumulates the ad-hoc commercial terms negotiated in
// the authorization wizard. Discarded unless the wizard commits.
type CommercialAdjustment struct {
	TotalOriginal   float64              `json:"total_original"`
	TotalFinal      float64              `json:"total_final"`
	AdvanceOriginal float64              `json:"advance_original"`
	AdvanceFinal    float64              `json:"advance_final"`
	AdvancePercent  float64              `json:"advance_percent"`
	Discounts       []AdjustmentDiscount `json:"discounts"`
	Notes           string               `json:"notes,omitempty"`
}

// TransferKind distinguishes the two supported bank transfer rails.
type TransferKind string

const (
	TransferKindSPEI        TransferKind = "spei"
	TransferKindTraditional TransferKind = "traditional"
)

// PaymentMethodSelection records how the advance will be received.
type PaymentMethodSelection struct {
	BankAccountID string       `json:"bank_account_id"`
	TransferKind  TransferKind `json:"transfer_kind"`
	RequiresProof bool         `json:"requires_proof"`
}

// PenaltyTerms is the optional daily late-payment penalty block.
type PenaltyTerms struct {
	Enabled      bool    `json:"enabled"`
	DailyPercent float64 `json:"daily_percent,omitempty"`
}

// EarlyPaymentDiscount is the optional early-settlement incentive block.
type EarlyPaymentDiscount struct {
	Enabled   bool    `json:"enabled"`
	Percent   float64 `json:"percent,omitempty"`
	DaysAhead int     `json:"days_ahead,omitempty"`
}

// PaymentCalendar fixes the due dates and incentives of the commitment.
//
// The advance due date must fall between tomorrow and the day before the
// event, inclusive; the revenue-share date defaults to the event date itself.
type PaymentCalendar struct {
	AdvanceDueDate      time.Time            `json:"advance_due_date"`
	RevenueShareDueDate time.Time            `json:"revenue_share_due_date"`
	Penalty             PenaltyTerms         `json:"penalty"`
	EarlyPayment        EarlyPaymentDiscount `json:"early_payment"`
}

// AuthorizationRecord is the immutable commit artifact of the wizard.
//
// Storage model (DynamoDB):
//   - PK: quotation_id (one record per quotation; the conditional put on this
//     key is the at-most-once commit guard).
type AuthorizationRecord struct {
	QuotationID string                 `json:"quotation_id"`
	Adjustment  CommercialAdjustment   `json:"adjustment"`
	Method      PaymentMethodSelection `json:"method"`
	Calendar    PaymentCalendar        `json:"calendar"`
	CommittedAt time.Time              `json:"committed_at"`
	CommittedBy string                 `json:"committed_by,omitempty"`
}
