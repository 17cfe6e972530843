package interfaces

import (
	"context"

	"cotizador/internal/domain/entities"
)

// IAuthorizationRecordRepository persists the immutable wizard commit
// artifact. Create must be conditional on the quotation not having a record
// yet; that condition is the at-most-once commit guarantee.
type IAuthorizationRecordRepository interface {
	Create(ctx context.Context, rec entities.AuthorizationRecord) (entities.AuthorizationRecord, error)
	GetByQuotationID(ctx context.Context, quotationID string) (entities.AuthorizationRecord, error)
}
