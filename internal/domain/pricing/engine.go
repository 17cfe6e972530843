// Package pricing is the single financial engine shared by every surface:
// the staff editor, the public terms/payment endpoints and the authorization
// preview all call ComputeSummary instead of carrying their own arithmetic.
package pricing

import (
	"fmt"
	"math"

	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/money"
)

// Input is everything ComputeSummary needs. Condition and Method are optional:
// with neither selected the summary is simply the system price with no
// discount, no split and no processor fee.
type Input struct {
	LineItems              []entities.LineItem
	Condition              *entities.CommercialCondition
	Method                 *entities.PaymentMethod
	SalesCommissionPercent float64
}

// ComputeSummary derives the full financial breakdown of a quotation.
// Pure and deterministic: same input, same summary, no I/O.
func ComputeSummary(in Input) entities.FinancialSummary {
	var systemPrice, totalCost, totalExpense, profitBaseline float64
	for _, li := range in.LineItems {
		qty := float64(li.Quantity)
		systemPrice += li.PublicPrice * qty
		totalCost += li.Cost * qty
		totalExpense += li.Expense * qty
		profitBaseline += li.EmbeddedMargin * qty
	}
	systemPrice = money.Round(systemPrice)

	var discountPercent, advancePercent float64
	if in.Condition != nil {
		discountPercent = in.Condition.DiscountPercent
		advancePercent = in.Condition.AdvancePercent
	}

	discountAmount := money.Round(systemPrice * discountPercent / 100)
	finalPrice := systemPrice - discountAmount
	if finalPrice < 0 {
		finalPrice = 0
	}

	// Advance split. Without an advance percent the whole final price is
	// collected now. Deferred is derived by subtraction so the two legs
	// always reconcile to the cent.
	advanceAmount := finalPrice
	if advancePercent > 0 {
		advanceAmount = money.Round(finalPrice * advancePercent / 100)
	}
	deferredAmount := money.Round(finalPrice - advanceAmount)
	collectNow := advanceAmount

	var installmentCount int
	var installmentAmount, processorCommission float64
	if in.Method != nil {
		installmentCount = in.Method.InstallmentCount
		processorCommission = in.Method.FixedCommissionAmount +
			collectNow*in.Method.BaseCommissionPercent/100
		if installmentCount > 0 {
			processorCommission += collectNow * in.Method.InstallmentCommissionPercent / 100
		}
		processorCommission = money.Round(processorCommission)
	}

	// Installments are quoted off the pre-discount system price, by product
	// decision. Every existing surface shows that number.
	if installmentCount > 0 {
		installmentAmount = money.Round(systemPrice / float64(installmentCount))
	}

	salesCommission := money.Round(finalPrice * in.SalesCommissionPercent / 100)
	salesProfit := money.Round(finalPrice - totalCost - totalExpense - salesCommission - processorCommission)
	profitBaseline = money.Round(profitBaseline)
	profitDelta := money.Round(salesProfit - profitBaseline)

	return entities.FinancialSummary{
		SystemPrice:               systemPrice,
		DiscountAmount:            discountAmount,
		FinalPrice:                finalPrice,
		AdvanceAmount:             advanceAmount,
		DeferredAmount:            deferredAmount,
		InstallmentCount:          installmentCount,
		InstallmentAmount:         installmentAmount,
		SalesCommissionAmount:     salesCommission,
		ProcessorCommissionAmount: processorCommission,
		SalesProfit:               salesProfit,
		SystemProfitBaseline:      profitBaseline,
		ProfitDelta:               profitDelta,
		AuditCode:                 auditCode(profitBaseline, salesProfit, profitDelta),
	}
}

// auditCode encodes baseline and realized profit as "US<baseline>-UV<profit>",
// with "-P<delta>" appended only when the delta is negative. The doubled minus
// for negative deltas ("-P-300") reproduces the historical format; flagged for
// product clarification, not corrected here.
func auditCode(baseline, salesProfit, delta float64) string {
	code := fmt.Sprintf("US%d-UV%d", int64(math.Floor(baseline)), int64(math.Floor(salesProfit)))
	if delta < 0 {
		code += fmt.Sprintf("-P%d", int64(math.Floor(delta)))
	}
	return code
}
