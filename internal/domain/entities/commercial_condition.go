package entities

// ProcessorKind tags how the external processor charges for a payment method.
// Branching on it replaces the old habit of comparing method display labels.
type ProcessorKind string

const (
	ProcessorKindCash         ProcessorKind = "cash"
	ProcessorKindBankTransfer ProcessorKind = "bank_transfer"
	ProcessorKindCard         ProcessorKind = "card"
	ProcessorKindSPEI         ProcessorKind = "spei"
)

// FeeBearing reports whether the processor fee must be grossed up onto the
// customer-facing amount. Cash, plain transfers and SPEI settle at face value.
func (k ProcessorKind) FeeBearing() bool {
	switch k {
	case ProcessorKindCard:
		return true
	case ProcessorKindCash, ProcessorKindBankTransfer, ProcessorKindSPEI:
		return false
	}
	return false
}

// PaymentMethod is one way a commercial condition can be paid.
//
// Domain notes:
//   - Immutable reference data, embedded inside its CommercialCondition.
//   - InstallmentCount > 0 means the method is quoted in equal installments
//     (MSI); the installment commission term only applies then.
type PaymentMethod struct {
	ID                           string        `json:"id"`
	Label                        string        `json:"label"`
	InstallmentCount             int           `json:"installment_count"`
	BaseCommissionPercent        float64       `json:"base_commission_percent"`
	FixedCommissionAmount        float64       `json:"fixed_commission_amount"`
	InstallmentCommissionPercent float64       `json:"installment_commission_percent"`
	ProcessorKind                ProcessorKind `json:"processor_kind"`
}

// CommercialCondition is a named bundle of discount/advance rules plus the
// payment methods allowed under it.
//
// Storage model (DynamoDB):
//   - PK: id
//   - Payment methods are embedded as a list attribute.
//
// Read-only to the core; staff curate conditions out of band.
type CommercialCondition struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	DiscountPercent float64         `json:"discount_percent"`
	AdvancePercent  float64         `json:"advance_percent"`
	PaymentMethods  []PaymentMethod `json:"payment_methods"`
}

// MethodByID resolves a payment method offered by this condition.
func (c CommercialCondition) MethodByID(id string) (PaymentMethod, bool) {
	for _, m := range c.PaymentMethods {
		if m.ID == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}
