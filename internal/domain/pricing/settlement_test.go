package pricing

import (
	"testing"

	"cotizador/internal/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestBuildSettlement_CardGrossesUpTheFee(t *testing.T) {
	summary := entities.FinancialSummary{
		AdvanceAmount:             675.0,
		ProcessorCommissionAmount: 38.75,
	}
	method := entities.PaymentMethod{
		ID:            "pm-card",
		Label:         "Tarjeta 3 MSI",
		ProcessorKind: entities.ProcessorKindCard,
	}

	s := BuildSettlement("q-1", summary, method)

	assert.Equal(t, 675.0, s.BaseAmount)
	assert.Equal(t, 713.75, s.GrossAmount)
	assert.Equal(t, "Anticipo cotización q-1", s.Metadata.Concept)
	assert.Equal(t, "q-1", s.Metadata.QuotationID)
	assert.True(t, s.Reconciled(38.75))
}

func TestBuildSettlement_TransferChargesFaceValue(t *testing.T) {
	summary := entities.FinancialSummary{
		AdvanceAmount:             500.0,
		ProcessorCommissionAmount: 12.0,
	}

	for _, kind := range []entities.ProcessorKind{
		entities.ProcessorKindCash,
		entities.ProcessorKindBankTransfer,
		entities.ProcessorKindSPEI,
	} {
		t.Run(string(kind), func(t *testing.T) {
			s := BuildSettlement("q-2", summary, entities.PaymentMethod{ID: "pm", ProcessorKind: kind})

			// No gross-up for face-value processors.
			assert.Equal(t, 500.0, s.BaseAmount)
			assert.Equal(t, 500.0, s.GrossAmount)
			assert.True(t, s.Reconciled(12.0))
		})
	}
}

func TestBuildSettlement_TruncatesToTheCent(t *testing.T) {
	summary := entities.FinancialSummary{
		AdvanceAmount:             100.999,
		ProcessorCommissionAmount: 3.337,
	}
	method := entities.PaymentMethod{ID: "pm-card", ProcessorKind: entities.ProcessorKindCard}

	s := BuildSettlement("q-3", summary, method)

	assert.Equal(t, 100.99, s.BaseAmount)
	assert.Equal(t, 104.32, s.GrossAmount)
}

func TestSettlement_ReconciledRejectsDrift(t *testing.T) {
	s := Settlement{
		BaseAmount:  100.0,
		GrossAmount: 103.5,
		Metadata:    SettlementMetadata{ProcessorKind: entities.ProcessorKindCard},
	}

	assert.True(t, s.Reconciled(3.5))
	assert.False(t, s.Reconciled(1.0))
}
