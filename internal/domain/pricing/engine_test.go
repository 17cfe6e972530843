package pricing

import (
	"testing"

	"cotizador/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLineItems() []entities.LineItem {
	return []entities.LineItem{
		{ID: "li-1", CategoryID: "banquete", Cost: 400, Expense: 100, PublicPrice: 1000, EmbeddedMargin: 500, Quantity: 2},
		{ID: "li-2", CategoryID: "mobiliario", Cost: 200, Expense: 50, PublicPrice: 500, EmbeddedMargin: 250, Quantity: 1},
	}
}

func TestComputeSummary_NoTermsSelected(t *testing.T) {
	s := ComputeSummary(Input{
		LineItems:              sampleLineItems(),
		SalesCommissionPercent: 10,
	})

	assert.Equal(t, 2500.0, s.SystemPrice)
	assert.Equal(t, 0.0, s.DiscountAmount)
	assert.Equal(t, 2500.0, s.FinalPrice)

	// Nothing selected: the whole final price is collected now.
	assert.Equal(t, 2500.0, s.AdvanceAmount)
	assert.Equal(t, 0.0, s.DeferredAmount)
	assert.Equal(t, 0, s.InstallmentCount)
	assert.Equal(t, 0.0, s.ProcessorCommissionAmount)

	assert.Equal(t, 250.0, s.SalesCommissionAmount)
	assert.Equal(t, 1000.0, s.SalesProfit)
	assert.Equal(t, 1250.0, s.SystemProfitBaseline)
	assert.Equal(t, -250.0, s.ProfitDelta)
	assert.Equal(t, "US1250-UV1000-P-250", s.AuditCode)
}

func TestComputeSummary_ConditionAndCardMethod(t *testing.T) {
	condition := &entities.CommercialCondition{
		ID:              "cond-1",
		DiscountPercent: 10,
		AdvancePercent:  30,
	}
	method := &entities.PaymentMethod{
		ID:                           "pm-card-3msi",
		Label:                        "Tarjeta 3 MSI",
		InstallmentCount:             3,
		BaseCommissionPercent:        3.5,
		FixedCommissionAmount:        5,
		InstallmentCommissionPercent: 1.5,
		ProcessorKind:                entities.ProcessorKindCard,
	}

	s := ComputeSummary(Input{
		LineItems:              sampleLineItems(),
		Condition:              condition,
		Method:                 method,
		SalesCommissionPercent: 10,
	})

	assert.Equal(t, 2500.0, s.SystemPrice)
	assert.Equal(t, 250.0, s.DiscountAmount)
	assert.Equal(t, 2250.0, s.FinalPrice)
	assert.Equal(t, 675.0, s.AdvanceAmount)
	assert.Equal(t, 1575.0, s.DeferredAmount)

	// Fixed fee + base percent + installment percent over the collect-now leg.
	assert.Equal(t, 38.75, s.ProcessorCommissionAmount)

	// Installments are quoted off the pre-discount system price.
	assert.Equal(t, 3, s.InstallmentCount)
	assert.Equal(t, 833.33, s.InstallmentAmount)

	assert.Equal(t, 225.0, s.SalesCommissionAmount)
	assert.Equal(t, 736.25, s.SalesProfit)
	assert.Equal(t, -513.75, s.ProfitDelta)
	assert.Equal(t, "US1250-UV736-P-514", s.AuditCode)
}

func TestComputeSummary_AuditCodeOmitsDeltaWhenNotNegative(t *testing.T) {
	s := ComputeSummary(Input{
		LineItems: []entities.LineItem{
			{ID: "li-1", Cost: 10, PublicPrice: 100, EmbeddedMargin: 20, Quantity: 1},
		},
	})

	assert.Equal(t, 90.0, s.SalesProfit)
	assert.Equal(t, 70.0, s.ProfitDelta)
	assert.Equal(t, "US20-UV90", s.AuditCode)
}

func TestComputeSummary_AdvanceAndDeferredReconcileToTheCent(t *testing.T) {
	condition := &entities.CommercialCondition{ID: "cond-1", AdvancePercent: 33}

	s := ComputeSummary(Input{
		LineItems: []entities.LineItem{
			{ID: "li-1", PublicPrice: 99.99, Quantity: 1},
		},
		Condition: condition,
	})

	require.Equal(t, 99.99, s.FinalPrice)
	assert.Equal(t, 33.0, s.AdvanceAmount)
	assert.Equal(t, 66.99, s.DeferredAmount)
	assert.InDelta(t, s.FinalPrice, s.AdvanceAmount+s.DeferredAmount, 1e-9)
}

func TestComputeSummary_FullDiscountFloorsAtZero(t *testing.T) {
	condition := &entities.CommercialCondition{ID: "cond-1", DiscountPercent: 100, AdvancePercent: 50}

	s := ComputeSummary(Input{
		LineItems: []entities.LineItem{
			{ID: "li-1", Cost: 100, PublicPrice: 500, Quantity: 1},
		},
		Condition: condition,
	})

	assert.Equal(t, 0.0, s.FinalPrice)
	assert.Equal(t, 0.0, s.AdvanceAmount)
	assert.Equal(t, 0.0, s.DeferredAmount)
	assert.Equal(t, -100.0, s.SalesProfit)
}

func TestComputeSummary_NoInstallmentFeeForSinglePayment(t *testing.T) {
	method := &entities.PaymentMethod{
		ID:                           "pm-card-contado",
		InstallmentCount:             0,
		BaseCommissionPercent:        3.5,
		InstallmentCommissionPercent: 1.5,
		ProcessorKind:                entities.ProcessorKindCard,
	}

	s := ComputeSummary(Input{
		LineItems: []entities.LineItem{
			{ID: "li-1", PublicPrice: 1000, Quantity: 1},
		},
		Method: method,
	})

	// Installment commission must not leak into single-payment methods.
	assert.Equal(t, 35.0, s.ProcessorCommissionAmount)
	assert.Equal(t, 0, s.InstallmentCount)
	assert.Equal(t, 0.0, s.InstallmentAmount)
}

func TestComputeSummary_IsPure(t *testing.T) {
	items := sampleLineItems()
	in := Input{LineItems: items, SalesCommissionPercent: 10}

	first := ComputeSummary(in)
	second := ComputeSummary(in)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleLineItems(), items)
}
