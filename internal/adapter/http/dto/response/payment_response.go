package response

import (
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/pricing"
)

type PaymentResponse struct {
	PaymentID   string    `json:"payment_id"`
	ID          string    `json:"id"`
	QuotationID string    `json:"quotation_id"`
	Amount      float64   `json:"amount"`
	Concept     string    `json:"concept"`
	PaymentDate time.Time `json:"payment_date"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`

	GatewayPayloadRaw string                 `json:"gateway_payload_raw,omitempty"`
	GatewayPayload    map[string]interface{} `json:"gateway_payload,omitempty"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.ID,
		ID:                p.ID,
		QuotationID:       p.QuotationID,
		Amount:            p.Amount,
		Concept:           p.Concept,
		PaymentDate:       p.Date,
		Date:              p.Date,
		Status:            string(p.Status),
		GatewayPayloadRaw: string(p.GatewayPayloadRaw),
		GatewayPayload:    p.GatewayPayload,
	}
}

// SettlementResponse pairs the recorded payment with the arithmetic that was
// submitted to the gateway, so callers can show the fee gross-up.
type SettlementResponse struct {
	Payment     PaymentResponse `json:"payment"`
	BaseAmount  float64         `json:"base_amount"`
	GrossAmount float64         `json:"gross_amount"`
	Concept     string          `json:"concept"`
	MethodLabel string          `json:"method_label"`
}

func FromSettlement(p entities.Payment, s pricing.Settlement) SettlementResponse {
	return SettlementResponse{
		Payment:     FromPayment(p),
		BaseAmount:  s.BaseAmount,
		GrossAmount: s.GrossAmount,
		Concept:     s.Metadata.Concept,
		MethodLabel: s.Metadata.MethodLabel,
	}
}
