package entities

// LineItem is one contracted service inside a quotation.
//
// Domain notes:
//   - Line items are owned by the quotation and stored inline with it.
//   - Quantity is mutable through staff/client edits; the edit floor is 1 and
//     an explicit quantity of 0 removes the line.
//   - EmbeddedMargin is the per-unit utility the catalog already priced into
//     PublicPrice; it is the baseline the audit code compares realized profit
//     against.
type LineItem struct {
	ID             string  `json:"id"`
	CategoryID     string  `json:"category_id"`
	Cost           float64 `json:"cost"`
	Expense        float64 `json:"expense"`
	PublicPrice    float64 `json:"public_price"`
	EmbeddedMargin float64 `json:"embedded_margin"`
	Quantity       int     `json:"quantity"`
	Position       int     `json:"position"`
}
