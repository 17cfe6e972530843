// Package authorization models the staff wizard that turns a pending
// quotation into a committed authorization record. The wizard is an explicit
// finite-state machine: a strictly ordered step list, one validation predicate
// per step, and an accumulator record assembled across transitions. It holds
// no I/O; the use case layer feeds it computed amounts and persists the
// record it produces.
package authorization

import (
	"errors"
	"fmt"
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/money"
)

// Step identifies one wizard stage. Steps are linear: Next validates and
// advances exactly one, Back retreats exactly one without losing data.
type Step string

const (
	StepReview               Step = "review"
	StepCommercialAdjustment Step = "commercial_adjustment"
	StepPaymentMethod        Step = "payment_method"
	StepPaymentCalendar      Step = "payment_calendar"
	StepPreview              Step = "preview"
	StepCommitted            Step = "committed"
)

var stepOrder = []Step{
	StepReview,
	StepCommercialAdjustment,
	StepPaymentMethod,
	StepPaymentCalendar,
	StepPreview,
	StepCommitted,
}

// Advance slider bounds for the commercial adjustment step.
const (
	MinAdvancePercent = 10
	MaxAdvancePercent = 90
)

var (
	ErrAlreadyCommitted = errors.New("authorization already committed")
	ErrNotAtPreview     = errors.New("commit is only available from the preview step")
	ErrAtFirstStep      = errors.New("already at the first step")
)

// StepError is a validation failure that blocks Next on the current step.
// It is locally recoverable: correct the named field and retry.
type StepError struct {
	Step   Step
	Field  string
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %s %s", e.Step, e.Field, e.Reason)
}

// Wizard accumulates the authorization terms for one quotation. A wizard is
// owned by a single editing session; it is not safe for concurrent use.
type Wizard struct {
	quotationID string
	eventDate   time.Time
	idx         int

	// Review selections.
	conditionID     string
	paymentMethodID string
	overrideTotal   float64

	adjustment entities.CommercialAdjustment
	method     entities.PaymentMethodSelection
	calendar   entities.PaymentCalendar
}

func New(quotationID string, eventDate time.Time) *Wizard {
	return &Wizard{quotationID: quotationID, eventDate: eventDate}
}

func (w *Wizard) Step() Step          { return stepOrder[w.idx] }
func (w *Wizard) QuotationID() string { return w.quotationID }

func (w *Wizard) ConditionID() string     { return w.conditionID }
func (w *Wizard) PaymentMethodID() string { return w.paymentMethodID }

func (w *Wizard) Adjustment() entities.CommercialAdjustment { return w.adjustment }
func (w *Wizard) Method() entities.PaymentMethodSelection   { return w.method }
func (w *Wizard) Calendar() entities.PaymentCalendar        { return w.calendar }

// SetReview records the operator's condition/method selection, an optional
// custom total override, and the seed amounts computed by the pricing engine.
// TotalOriginal seeds from the summary's final price unless overridden;
// the advance percent seed is clamped into the slider bounds.
func (w *Wizard) SetReview(conditionID, methodID string, overrideTotal float64, summary entities.FinancialSummary) error {
	if w.Step() == StepCommitted {
		return ErrAlreadyCommitted
	}
	w.conditionID = conditionID
	w.paymentMethodID = methodID
	w.overrideTotal = overrideTotal

	total := summary.FinalPrice
	if overrideTotal > 0 {
		total = overrideTotal
	}

	percent := float64(50)
	if summary.FinalPrice > 0 && summary.AdvanceAmount > 0 {
		percent = money.Round(summary.AdvanceAmount / summary.FinalPrice * 100)
	}
	if percent < MinAdvancePercent {
		percent = MinAdvancePercent
	}
	if percent > MaxAdvancePercent {
		percent = MaxAdvancePercent
	}

	w.adjustment.TotalOriginal = money.Round(total)
	w.adjustment.AdvanceOriginal = summary.AdvanceAmount
	w.adjustment.AdvancePercent = percent
	w.recalcAdjustment()
	return nil
}

// AddDiscount appends an itemized discount and recomputes the running totals.
func (w *Wizard) AddDiscount(concept string, kind entities.DiscountKind, value float64) error {
	if concept == "" {
		return &StepError{Step: StepCommercialAdjustment, Field: "concept", Reason: "is required"}
	}
	if value <= 0 {
		return &StepError{Step: StepCommercialAdjustment, Field: "value", Reason: "must be positive"}
	}
	if kind == entities.DiscountKindPercent && value > 100 {
		return &StepError{Step: StepCommercialAdjustment, Field: "value", Reason: "percent cannot exceed 100"}
	}
	w.adjustment.Discounts = append(w.adjustment.Discounts, entities.AdjustmentDiscount{
		Concept: concept,
		Kind:    kind,
		Value:   value,
	})
	w.recalcAdjustment()
	return nil
}

func (w *Wizard) RemoveDiscount(index int) error {
	if index < 0 || index >= len(w.adjustment.Discounts) {
		return &StepError{Step: StepCommercialAdjustment, Field: "discount", Reason: "index out of range"}
	}
	w.adjustment.Discounts = append(w.adjustment.Discounts[:index], w.adjustment.Discounts[index+1:]...)
	w.recalcAdjustment()
	return nil
}

func (w *Wizard) SetAdvancePercent(percent float64) error {
	if percent < MinAdvancePercent || percent > MaxAdvancePercent {
		return &StepError{
			Step:   StepCommercialAdjustment,
			Field:  "advance_percent",
			Reason: fmt.Sprintf("must be between %d and %d", MinAdvancePercent, MaxAdvancePercent),
		}
	}
	w.adjustment.AdvancePercent = percent
	w.recalcAdjustment()
	return nil
}

func (w *Wizard) SetNotes(notes string) {
	w.adjustment.Notes = notes
}

// recalcAdjustment re-derives the final totals after every mutation. Percent
// discounts apply to the original total so mutations never compound.
func (w *Wizard) recalcAdjustment() {
	var discounted float64
	for _, d := range w.adjustment.Discounts {
		discounted += d.Amount(w.adjustment.TotalOriginal)
	}
	final := money.Round(w.adjustment.TotalOriginal - discounted)
	if final < 0 {
		final = 0
	}
	w.adjustment.TotalFinal = final
	w.adjustment.AdvanceFinal = money.Round(final * w.adjustment.AdvancePercent / 100)
}

// SelectBankAccount records where the advance must be received.
func (w *Wizard) SelectBankAccount(accountID string, kind entities.TransferKind, requiresProof bool) {
	w.method = entities.PaymentMethodSelection{
		BankAccountID: accountID,
		TransferKind:  kind,
		RequiresProof: requiresProof,
	}
}

// SetCalendar fixes due dates and optional blocks. A zero revenue-share date
// defaults to the event date. Disabled blocks contribute no fields.
func (w *Wizard) SetCalendar(cal entities.PaymentCalendar) {
	if cal.RevenueShareDueDate.IsZero() {
		cal.RevenueShareDueDate = w.eventDate
	}
	if !cal.Penalty.Enabled {
		cal.Penalty = entities.PenaltyTerms{}
	}
	if !cal.EarlyPayment.Enabled {
		cal.EarlyPayment = entities.EarlyPaymentDiscount{}
	}
	w.calendar = cal
}

// Next validates the current step and advances one. Data entered on any step
// is retained, so Back followed by Next restores the exact prior state.
func (w *Wizard) Next(now time.Time) error {
	switch w.Step() {
	case StepReview:
		if w.conditionID == "" {
			return &StepError{Step: StepReview, Field: "condition", Reason: "is required"}
		}
		if w.paymentMethodID == "" {
			return &StepError{Step: StepReview, Field: "payment_method", Reason: "is required"}
		}
	case StepCommercialAdjustment:
		if w.adjustment.AdvancePercent < MinAdvancePercent || w.adjustment.AdvancePercent > MaxAdvancePercent {
			return &StepError{Step: StepCommercialAdjustment, Field: "advance_percent", Reason: "out of bounds"}
		}
	case StepPaymentMethod:
		if w.method.BankAccountID == "" {
			return &StepError{Step: StepPaymentMethod, Field: "bank_account", Reason: "is required"}
		}
	case StepPaymentCalendar:
		if err := w.validateCalendar(now); err != nil {
			return err
		}
	case StepPreview:
		return ErrNotAtPreview
	case StepCommitted:
		return ErrAlreadyCommitted
	}
	w.idx++
	return nil
}

// Back always succeeds below Committed and discards nothing.
func (w *Wizard) Back() error {
	if w.Step() == StepCommitted {
		return ErrAlreadyCommitted
	}
	if w.idx == 0 {
		return ErrAtFirstStep
	}
	w.idx--
	return nil
}

func (w *Wizard) validateCalendar(now time.Time) error {
	if w.calendar.AdvanceDueDate.IsZero() {
		return &StepError{Step: StepPaymentCalendar, Field: "advance_due_date", Reason: "is required"}
	}
	due := dateOnly(w.calendar.AdvanceDueDate)
	tomorrow := dateOnly(now).AddDate(0, 0, 1)
	dayBefore := dateOnly(w.eventDate).AddDate(0, 0, -1)
	if due.Before(tomorrow) || due.After(dayBefore) {
		return &StepError{Step: StepPaymentCalendar, Field: "advance_due_date", Reason: "must fall between tomorrow and the day before the event"}
	}
	if w.calendar.Penalty.Enabled && w.calendar.Penalty.DailyPercent <= 0 {
		return &StepError{Step: StepPaymentCalendar, Field: "penalty.daily_percent", Reason: "must be positive when penalty is enabled"}
	}
	if w.calendar.EarlyPayment.Enabled {
		if w.calendar.EarlyPayment.Percent <= 0 {
			return &StepError{Step: StepPaymentCalendar, Field: "early_payment.percent", Reason: "must be positive when enabled"}
		}
		if w.calendar.EarlyPayment.DaysAhead <= 0 {
			return &StepError{Step: StepPaymentCalendar, Field: "early_payment.days_ahead", Reason: "must be positive when enabled"}
		}
	}
	return nil
}

// Record assembles the immutable commit artifact. Only legal from Preview;
// every earlier step has already validated on its way here.
func (w *Wizard) Record(committedAt time.Time, committedBy string) (entities.AuthorizationRecord, error) {
	switch w.Step() {
	case StepPreview:
	case StepCommitted:
		return entities.AuthorizationRecord{}, ErrAlreadyCommitted
	default:
		return entities.AuthorizationRecord{}, ErrNotAtPreview
	}
	return entities.AuthorizationRecord{
		QuotationID: w.quotationID,
		Adjustment:  w.adjustment,
		Method:      w.method,
		Calendar:    w.calendar,
		CommittedAt: committedAt,
		CommittedBy: committedBy,
	}, nil
}

// MarkCommitted moves the wizard to its terminal state after the external
// commit succeeded. On failure the caller leaves the wizard at Preview.
func (w *Wizard) MarkCommitted() {
	w.idx = len(stepOrder) - 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
