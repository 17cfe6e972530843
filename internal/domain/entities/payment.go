package entities

import (
	"encoding/json"
	"time"
)

// PaymentStatus represents the settlement outcome of a gateway charge.
type PaymentStatus string

const (
	PaymentStatusPendiente PaymentStatus = "pendiente"
	PaymentStatusAprobado  PaymentStatus = "aprobado"
	PaymentStatusRechazado PaymentStatus = "rechazado"
)

// Payment is the record created exactly once per confirmed gateway settlement.
//
// Storage model (DynamoDB):
//   - PK: id (the gateway payment handle)
//   - GSI1 (quotation_id-index): quotation_id
//
// Gateway payload:
//   - GatewayPayloadRaw keeps the provider response (JSON) for audit.
//   - GatewayPayload is an optional parsed copy, useful when debugging.
type Payment struct {
	ID          string        `json:"id"`
	QuotationID string        `json:"quotation_id"`
	Amount      float64       `json:"amount"`
	Concept     string        `json:"concept"`
	Date        time.Time     `json:"date"`
	Status      PaymentStatus `json:"status"`

	GatewayPayloadRaw json.RawMessage        `json:"gateway_payload_raw,omitempty"`
	GatewayPayload    map[string]interface{} `json:"gateway_payload,omitempty"`
}
