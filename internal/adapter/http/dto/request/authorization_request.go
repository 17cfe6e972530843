package request

import (
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase"
)

type DiscountRequest struct {
	Concept string  `json:"concept" binding:"required"`
	Kind    string  `json:"kind" binding:"required,oneof=percent fixed"`
	Value   float64 `json:"value" binding:"required,gt=0"`
}

type PenaltyRequest struct {
	Enabled      bool    `json:"enabled"`
	DailyPercent float64 `json:"daily_percent" binding:"omitempty,percent"`
}

type EarlyPaymentRequest struct {
	Enabled   bool    `json:"enabled"`
	Percent   float64 `json:"percent" binding:"omitempty,percent"`
	DaysAhead int     `json:"days_ahead" binding:"omitempty,min=1"`
}

type CalendarRequest struct {
	AdvanceDueDate      time.Time           `json:"advance_due_date" binding:"required"`
	RevenueShareDueDate time.Time           `json:"revenue_share_due_date"`
	Penalty             PenaltyRequest      `json:"penalty"`
	EarlyPayment        EarlyPaymentRequest `json:"early_payment"`
}

// WizardStepRequest carries the payload for whichever wizard step the session
// is currently at. Fields for the other steps are ignored.
type WizardStepRequest struct {
	// Review
	ConditionID     string  `json:"condition_id"`
	PaymentMethodID string  `json:"payment_method_id"`
	OverrideTotal   float64 `json:"override_total" binding:"omitempty,gt=0"`

	// Commercial adjustment
	AddDiscounts          []DiscountRequest `json:"add_discounts" binding:"omitempty,dive"`
	RemoveDiscountIndexes []int             `json:"remove_discount_indexes"`
	AdvancePercent        *float64          `json:"advance_percent" binding:"omitempty,percent"`
	Notes                 *string           `json:"notes"`

	// Payment method selection
	BankAccountID string `json:"bank_account_id"`
	TransferKind  string `json:"transfer_kind" binding:"omitempty,oneof=spei traditional"`
	RequiresProof *bool  `json:"requires_proof"`

	// Payment calendar
	Calendar *CalendarRequest `json:"calendar"`
}

func (r WizardStepRequest) ToStepInput() usecase.StepInput {
	in := usecase.StepInput{
		ConditionID:           r.ConditionID,
		PaymentMethodID:       r.PaymentMethodID,
		OverrideTotal:         r.OverrideTotal,
		RemoveDiscountIndexes: r.RemoveDiscountIndexes,
		AdvancePercent:        r.AdvancePercent,
		Notes:                 r.Notes,
		BankAccountID:         r.BankAccountID,
		TransferKind:          entities.TransferKind(r.TransferKind),
		RequiresProof:         r.RequiresProof,
	}
	for _, d := range r.AddDiscounts {
		in.AddDiscounts = append(in.AddDiscounts, entities.AdjustmentDiscount{
			Concept: d.Concept,
			Kind:    entities.DiscountKind(d.Kind),
			Value:   d.Value,
		})
	}
	if r.Calendar != nil {
		in.Calendar = &entities.PaymentCalendar{
			AdvanceDueDate:      r.Calendar.AdvanceDueDate,
			RevenueShareDueDate: r.Calendar.RevenueShareDueDate,
			Penalty: entities.PenaltyTerms{
				Enabled:      r.Calendar.Penalty.Enabled,
				DailyPercent: r.Calendar.Penalty.DailyPercent,
			},
			EarlyPayment: entities.EarlyPaymentDiscount{
				Enabled:   r.Calendar.EarlyPayment.Enabled,
				Percent:   r.Calendar.EarlyPayment.Percent,
				DaysAhead: r.Calendar.EarlyPayment.DaysAhead,
			},
		}
	}
	return in
}

// CommitRequest closes the wizard from the preview step.
type CommitRequest struct {
	CommittedBy string `json:"committed_by"`
}
