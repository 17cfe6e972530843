package response

import (
	"testing"
	"time"

	"cotizador/internal/domain/entities"
)

func TestFromQuotationOmitsZeroSummary(t *testing.T) {
	q := entities.Quotation{
		ID:        "q-1",
		EventID:   "ev-1",
		Status:    entities.QuotationStatusPendiente,
		EventDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		LineItems: []entities.LineItem{
			{ID: "li-1", PublicPrice: 1200, Quantity: 1},
		},
	}

	resp := FromQuotation(q, entities.FinancialSummary{})

	if resp.Summary != nil {
		t.Fatalf("expected summary omitted, got %+v", resp.Summary)
	}
	if len(resp.LineItems) != 1 || resp.LineItems[0].ID != "li-1" {
		t.Fatalf("unexpected line items: %+v", resp.LineItems)
	}
	if resp.Status != "pendiente" {
		t.Fatalf("unexpected status %q", resp.Status)
	}
}

func TestFromQuotationCarriesSummary(t *testing.T) {
	q := entities.Quotation{ID: "q-1", EventID: "ev-1"}
	s := entities.FinancialSummary{
		SystemPrice:    2500,
		DiscountAmount: 250,
		FinalPrice:     2250,
		AdvanceAmount:  675,
		DeferredAmount: 1575,
		AuditCode:      "US1250-UV1000-P-250",
	}

	resp := FromQuotation(q, s)

	if resp.Summary == nil {
		t.Fatal("expected summary present")
	}
	if resp.Summary.FinalPrice != 2250 || resp.Summary.AuditCode != "US1250-UV1000-P-250" {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}
}

func TestFromCommercialCondition(t *testing.T) {
	c := entities.CommercialCondition{
		ID:              "cond-1",
		Name:            "Contado anticipado",
		DiscountPercent: 10,
		AdvancePercent:  30,
		PaymentMethods: []entities.PaymentMethod{
			{ID: "pm-card", Label: "Tarjeta 3 MSI", InstallmentCount: 3, ProcessorKind: entities.ProcessorKindCard},
		},
	}

	resp := FromCommercialCondition(c)

	if len(resp.PaymentMethods) != 1 {
		t.Fatalf("expected one payment method, got %d", len(resp.PaymentMethods))
	}
	if resp.PaymentMethods[0].ProcessorKind != "card" {
		t.Fatalf("unexpected processor kind %q", resp.PaymentMethods[0].ProcessorKind)
	}
	if resp.DiscountPercent != 10 || resp.AdvancePercent != 30 {
		t.Fatalf("unexpected percents: %+v", resp)
	}
}
