package pricing

import (
	"fmt"

	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/money"
)

// SettlementMetadata travels with the charge to the gateway so its events can
// be reconciled back to the quotation.
type SettlementMetadata struct {
	QuotationID      string                 `json:"quotation_id"`
	Concept          string                 `json:"concept"`
	MethodLabel      string                 `json:"method_label"`
	ProcessorKind    entities.ProcessorKind `json:"processor_kind"`
	InstallmentCount int                    `json:"installment_count"`
}

// Settlement is the amount pair handed to the gateway: the customer is charged
// GrossAmount and the merchant must net BaseAmount after the processor fee.
type Settlement struct {
	BaseAmount  float64            `json:"base_amount"`
	GrossAmount float64            `json:"gross_amount"`
	Metadata    SettlementMetadata `json:"metadata"`
}

// BuildSettlement derives the gateway charge from a computed summary.
//
// BaseAmount is the collect-now leg (the advance, after discount). For
// fee-bearing processors the fee is grossed up onto the customer; for cash,
// transfers and SPEI the charge is the base itself. Amounts are truncated to
// the cent at this point, the last stop before the gateway.
func BuildSettlement(quotationID string, summary entities.FinancialSummary, method entities.PaymentMethod) Settlement {
	base := money.Truncate(summary.AdvanceAmount)
	gross := base
	if method.ProcessorKind.FeeBearing() {
		gross = money.Truncate(base + summary.ProcessorCommissionAmount)
	}

	return Settlement{
		BaseAmount:  base,
		GrossAmount: gross,
		Metadata: SettlementMetadata{
			QuotationID:      quotationID,
			Concept:          fmt.Sprintf("Anticipo cotización %s", quotationID),
			MethodLabel:      method.Label,
			ProcessorKind:    method.ProcessorKind,
			InstallmentCount: method.InstallmentCount,
		},
	}
}

// Reconciled verifies the gateway math: what the customer pays minus the
// processor fee must land on the merchant's base amount, to the cent.
func (s Settlement) Reconciled(processorCommission float64) bool {
	fee := 0.0
	if s.Metadata.ProcessorKind.FeeBearing() {
		fee = processorCommission
	}
	return money.WithinCent(s.GrossAmount-fee, s.BaseAmount)
}
