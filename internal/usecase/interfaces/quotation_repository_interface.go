package interfaces

import (
	"context"

	"cotizador/internal/domain/entities"
)

// IQuotationRepository abstracts DynamoDB persistence for Quotation.
//
// The core must be able to:
//   - create a draft when an event requests a quotation
//   - reload it with its inline line items on every surface
//   - persist staff line-item edits and client condition/method selections
//   - drive the status transitions (aprobada on commit, vencida on lapse,
//     cancelada on cancellation)
type IQuotationRepository interface {
	Create(ctx context.Context, q entities.Quotation) (entities.Quotation, error)
	GetByID(ctx context.Context, id string) (entities.Quotation, error)
	GetByEventID(ctx context.Context, eventID string) (entities.Quotation, error)
	UpdateLineItems(ctx context.Context, id string, items []entities.LineItem) (entities.Quotation, error)
	UpdateTerms(ctx context.Context, id, conditionID, paymentMethodID string) (entities.Quotation, error)
	UpdateStatus(ctx context.Context, id string, status entities.QuotationStatus) (entities.Quotation, error)
}
