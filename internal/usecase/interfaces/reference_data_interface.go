package interfaces

import (
	"context"
	"time"

	"cotizador/internal/domain/entities"
)

// ICommercialConditionCatalog exposes the read-only commercial conditions and
// the payment methods each one allows. The core never writes to it.
type ICommercialConditionCatalog interface {
	List(ctx context.Context) ([]entities.CommercialCondition, error)
	GetByID(ctx context.Context, id string) (entities.CommercialCondition, error)
}

// IBankAccountCatalog exposes the read-only receiving accounts for the
// wizard's payment-method selection step.
type IBankAccountCatalog interface {
	List(ctx context.Context) ([]entities.BankAccount, error)
}

// IDateAvailability is the calendar oracle: whether a date is still free for
// an event. Consumed as a boolean only; its internals live elsewhere.
type IDateAvailability interface {
	IsDateAvailable(ctx context.Context, date time.Time, eventID string) (bool, error)
}
