package entities

// FinancialSummary is the derived money breakdown of a quotation under a
// selected commercial condition and payment method.
//
// Invariants (cent-reconciled):
//   - FinalPrice = SystemPrice - DiscountAmount, never negative.
//   - AdvanceAmount + DeferredAmount = FinalPrice.
//   - SalesProfit = FinalPrice - Σcost - Σexpense - SalesCommissionAmount -
//     ProcessorCommissionAmount.
//
// Never persisted: always recomputed from its inputs so a stale summary can
// never be displayed or submitted for payment.
type FinancialSummary struct {
	SystemPrice               float64 `json:"system_price"`
	DiscountAmount            float64 `json:"discount_amount"`
	FinalPrice                float64 `json:"final_price"`
	AdvanceAmount             float64 `json:"advance_amount"`
	DeferredAmount            float64 `json:"deferred_amount"`
	InstallmentCount          int     `json:"installment_count"`
	InstallmentAmount         float64 `json:"installment_amount"`
	SalesCommissionAmount     float64 `json:"sales_commission_amount"`
	ProcessorCommissionAmount float64 `json:"processor_commission_amount"`
	SalesProfit               float64 `json:"sales_profit"`
	SystemProfitBaseline      float64 `json:"system_profit_baseline"`
	ProfitDelta               float64 `json:"profit_delta"`
	AuditCode                 string  `json:"audit_code"`
}
