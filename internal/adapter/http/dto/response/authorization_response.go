package response

import (
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase"
)

type DiscountResponse struct {
	Concept string  `json:"concept"`
	Kind    string  `json:"kind"`
	Value   float64 `json:"value"`
}

type AdjustmentResponse struct {
	TotalOriginal   float64            `json:"total_original"`
	TotalFinal      float64            `json:"total_final"`
	AdvanceOriginal float64            `json:"advance_original"`
	AdvanceFinal    float64            `json:"advance_final"`
	AdvancePercent  float64            `json:"advance_percent"`
	Discounts       []DiscountResponse `json:"discounts"`
	Notes           string             `json:"notes,omitempty"`
}

type MethodSelectionResponse struct {
	BankAccountID string `json:"bank_account_id"`
	TransferKind  string `json:"transfer_kind"`
	RequiresProof bool   `json:"requires_proof"`
}

type CalendarResponse struct {
	AdvanceDueDate      time.Time `json:"advance_due_date"`
	RevenueShareDueDate time.Time `json:"revenue_share_due_date"`

	PenaltyEnabled      bool    `json:"penalty_enabled"`
	PenaltyDailyPercent float64 `json:"penalty_daily_percent,omitempty"`

	EarlyPaymentEnabled   bool    `json:"early_payment_enabled"`
	EarlyPaymentPercent   float64 `json:"early_payment_percent,omitempty"`
	EarlyPaymentDaysAhead int     `json:"early_payment_days_ahead,omitempty"`
}

// WizardStateResponse is the step-by-step session view returned after every
// wizard transition.
type WizardStateResponse struct {
	QuotationID     string                   `json:"quotation_id"`
	Step            string                   `json:"step"`
	ConditionID     string                   `json:"condition_id,omitempty"`
	PaymentMethodID string                   `json:"payment_method_id,omitempty"`
	Adjustment      AdjustmentResponse       `json:"adjustment"`
	Method          *MethodSelectionResponse `json:"method,omitempty"`
	Calendar        *CalendarResponse        `json:"calendar,omitempty"`
}

func FromWizardState(s usecase.WizardState) WizardStateResponse {
	resp := WizardStateResponse{
		QuotationID:     s.QuotationID,
		Step:            string(s.Step),
		ConditionID:     s.ConditionID,
		PaymentMethodID: s.PaymentMethodID,
		Adjustment:      fromAdjustment(s.Adjustment),
	}
	if s.Method.BankAccountID != "" {
		m := fromMethodSelection(s.Method)
		resp.Method = &m
	}
	if !s.Calendar.AdvanceDueDate.IsZero() {
		cal := fromCalendar(s.Calendar)
		resp.Calendar = &cal
	}
	return resp
}

type AuthorizationRecordResponse struct {
	QuotationID string                  `json:"quotation_id"`
	Adjustment  AdjustmentResponse      `json:"adjustment"`
	Method      MethodSelectionResponse `json:"method"`
	Calendar    CalendarResponse        `json:"calendar"`
	CommittedAt time.Time               `json:"committed_at"`
	CommittedBy string                  `json:"committed_by,omitempty"`
}

func FromAuthorizationRecord(r entities.AuthorizationRecord) AuthorizationRecordResponse {
	return AuthorizationRecordResponse{
		QuotationID: r.QuotationID,
		Adjustment:  fromAdjustment(r.Adjustment),
		Method:      fromMethodSelection(r.Method),
		Calendar:    fromCalendar(r.Calendar),
		CommittedAt: r.CommittedAt,
		CommittedBy: r.CommittedBy,
	}
}

func fromAdjustment(a entities.CommercialAdjustment) AdjustmentResponse {
	discounts := make([]DiscountResponse, 0, len(a.Discounts))
	for _, d := range a.Discounts {
		discounts = append(discounts, DiscountResponse{
			Concept: d.Concept,
			Kind:    string(d.Kind),
			Value:   d.Value,
		})
	}
	return AdjustmentResponse{
		TotalOriginal:   a.TotalOriginal,
		TotalFinal:      a.TotalFinal,
		AdvanceOriginal: a.AdvanceOriginal,
		AdvanceFinal:    a.AdvanceFinal,
		AdvancePercent:  a.AdvancePercent,
		Discounts:       discounts,
		Notes:           a.Notes,
	}
}

func fromMethodSelection(m entities.PaymentMethodSelection) MethodSelectionResponse {
	return MethodSelectionResponse{
		BankAccountID: m.BankAccountID,
		TransferKind:  string(m.TransferKind),
		RequiresProof: m.RequiresProof,
	}
}

func fromCalendar(c entities.PaymentCalendar) CalendarResponse {
	return CalendarResponse{
		AdvanceDueDate:        c.AdvanceDueDate,
		RevenueShareDueDate:   c.RevenueShareDueDate,
		PenaltyEnabled:        c.Penalty.Enabled,
		PenaltyDailyPercent:   c.Penalty.DailyPercent,
		EarlyPaymentEnabled:   c.EarlyPayment.Enabled,
		EarlyPaymentPercent:   c.EarlyPayment.Percent,
		EarlyPaymentDaysAhead: c.EarlyPayment.DaysAhead,
	}
}
