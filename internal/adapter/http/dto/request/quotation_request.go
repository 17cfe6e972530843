package request

import (
	"time"

	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase"
)

type LineItemRequest struct {
	ID             string  `json:"id"`
	CategoryID     string  `json:"category_id" binding:"required"`
	Cost           float64 `json:"cost"`
	Expense        float64 `json:"expense"`
	PublicPrice    float64 `json:"public_price" binding:"required"`
	EmbeddedMargin float64 `json:"embedded_margin"`
	Quantity       int     `json:"quantity" binding:"required,min=1"`
	Position       int     `json:"position"`
}

// QuotationCreateRequest drafts a quotation from a catalog snapshot taken by
// the caller. Prices and costs travel in the payload so the quotation keeps
// the values in force at drafting time.
type QuotationCreateRequest struct {
	EventID    string            `json:"event_id" binding:"required"`
	Name       string            `json:"name"`
	EventDate  time.Time         `json:"event_date" binding:"required"`
	ValidUntil time.Time         `json:"valid_until"`
	LineItems  []LineItemRequest `json:"line_items" binding:"required,dive"`
}

func (r QuotationCreateRequest) ToInput() usecase.CreateQuotationInput {
	items := make([]entities.LineItem, 0, len(r.LineItems))
	for i, li := range r.LineItems {
		position := li.Position
		if position == 0 {
			position = i
		}
		items = append(items, entities.LineItem{
			ID:             li.ID,
			CategoryID:     li.CategoryID,
			Cost:           li.Cost,
			Expense:        li.Expense,
			PublicPrice:    li.PublicPrice,
			EmbeddedMargin: li.EmbeddedMargin,
			Quantity:       li.Quantity,
			Position:       position,
		})
	}
	return usecase.CreateQuotationInput{
		EventID:    r.EventID,
		Name:       r.Name,
		EventDate:  r.EventDate,
		ValidUntil: r.ValidUntil,
		LineItems:  items,
	}
}

// LineItemQuantitiesRequest sets per-line quantities. A zero removes the
// line; negative values are rejected downstream.
type LineItemQuantitiesRequest struct {
	Quantities map[string]int `json:"quantities" binding:"required"`
}

// TermsRequest selects the commercial condition and payment method used for
// every summary recomputation from now on.
type TermsRequest struct {
	ConditionID     string `json:"condition_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}
