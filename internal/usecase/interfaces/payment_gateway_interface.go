package interfaces

import (
	"context"
	"encoding/json"

	"cotizador/internal/domain/pricing"
)

// IPaymentGateway abstracts the external payment provider (Mercado Pago).
//
// CreateSettlement charges the gross amount and returns the provider handle
// plus the raw response for audit. CancelSettlement voids an attempt the user
// abandoned so no unreconciled charge is left dangling at the provider.
type IPaymentGateway interface {
	CreateSettlement(ctx context.Context, amount float64, metadata pricing.SettlementMetadata) (handle string, status string, raw json.RawMessage, err error)
	CancelSettlement(ctx context.Context, handle string) error
}
