package response

import (
	"time"

	"cotizador/internal/domain/entities"
)

type LineItemResponse struct {
	ID             string  `json:"id"`
	CategoryID     string  `json:"category_id"`
	Cost           float64 `json:"cost"`
	Expense        float64 `json:"expense"`
	PublicPrice    float64 `json:"public_price"`
	EmbeddedMargin float64 `json:"embedded_margin"`
	Quantity       int     `json:"quantity"`
	Position       int     `json:"position"`
}

type FinancialSummaryResponse struct {
	SystemPrice               float64 `json:"system_price"`
	DiscountAmount            float64 `json:"discount_amount"`
	FinalPrice                float64 `json:"final_price"`
	AdvanceAmount             float64 `json:"advance_amount"`
	DeferredAmount            float64 `json:"deferred_amount"`
	InstallmentCount          int     `json:"installment_count"`
	InstallmentAmount         float64 `json:"installment_amount"`
	SalesCommissionAmount     float64 `json:"sales_commission_amount"`
	ProcessorCommissionAmount float64 `json:"processor_commission_amount"`
	SalesProfit               float64 `json:"sales_profit"`
	SystemProfitBaseline      float64 `json:"system_profit_baseline"`
	ProfitDelta               float64 `json:"profit_delta"`
	AuditCode                 string  `json:"audit_code"`
}

type QuotationResponse struct {
	ID                      string                    `json:"id"`
	EventID                 string                    `json:"event_id"`
	Name                    string                    `json:"name,omitempty"`
	EventDate               time.Time                 `json:"event_date"`
	ValidUntil              time.Time                 `json:"valid_until"`
	Status                  string                    `json:"status"`
	SelectedConditionID     string                    `json:"selected_condition_id,omitempty"`
	SelectedPaymentMethodID string                    `json:"selected_payment_method_id,omitempty"`
	LineItems               []LineItemResponse        `json:"line_items"`
	Summary                 *FinancialSummaryResponse `json:"summary,omitempty"`
	CreatedAt               time.Time                 `json:"created_at"`
	UpdatedAt               time.Time                 `json:"updated_at"`
}

func FromQuotation(q entities.Quotation, s entities.FinancialSummary) QuotationResponse {
	items := make([]LineItemResponse, 0, len(q.LineItems))
	for _, li := range q.LineItems {
		items = append(items, LineItemResponse{
			ID:             li.ID,
			CategoryID:     li.CategoryID,
			Cost:           li.Cost,
			Expense:        li.Expense,
			PublicPrice:    li.PublicPrice,
			EmbeddedMargin: li.EmbeddedMargin,
			Quantity:       li.Quantity,
			Position:       li.Position,
		})
	}

	resp := QuotationResponse{
		ID:                      q.ID,
		EventID:                 q.EventID,
		Name:                    q.Name,
		EventDate:               q.EventDate,
		ValidUntil:              q.ValidUntil,
		Status:                  string(q.Status),
		SelectedConditionID:     q.SelectedConditionID,
		SelectedPaymentMethodID: q.SelectedPaymentMethodID,
		LineItems:               items,
		CreatedAt:               q.CreatedAt,
		UpdatedAt:               q.UpdatedAt,
	}

	// A zero summary means no condition is selected yet; omit it rather
	// than show all-zero money fields.
	if s != (entities.FinancialSummary{}) {
		summary := fromSummary(s)
		resp.Summary = &summary
	}

	return resp
}

func fromSummary(s entities.FinancialSummary) FinancialSummaryResponse {
	return FinancialSummaryResponse{
		SystemPrice:               s.SystemPrice,
		DiscountAmount:            s.DiscountAmount,
		FinalPrice:                s.FinalPrice,
		AdvanceAmount:             s.AdvanceAmount,
		DeferredAmount:            s.DeferredAmount,
		InstallmentCount:          s.InstallmentCount,
		InstallmentAmount:         s.InstallmentAmount,
		SalesCommissionAmount:     s.SalesCommissionAmount,
		ProcessorCommissionAmount: s.ProcessorCommissionAmount,
		SalesProfit:               s.SalesProfit,
		SystemProfitBaseline:      s.SystemProfitBaseline,
		ProfitDelta:               s.ProfitDelta,
		AuditCode:                 s.AuditCode,
	}
}

type PaymentMethodResponse struct {
	ID                           string  `json:"id"`
	Label                        string  `json:"label"`
	InstallmentCount             int     `json:"installment_count"`
	BaseCommissionPercent        float64 `json:"base_commission_percent"`
	FixedCommissionAmount        float64 `json:"fixed_commission_amount"`
	InstallmentCommissionPercent float64 `json:"installment_commission_percent"`
	ProcessorKind                string  `json:"processor_kind"`
}

type CommercialConditionResponse struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description,omitempty"`
	DiscountPercent float64                 `json:"discount_percent"`
	AdvancePercent  float64                 `json:"advance_percent"`
	PaymentMethods  []PaymentMethodResponse `json:"payment_methods"`
}

func FromCommercialCondition(c entities.CommercialCondition) CommercialConditionResponse {
	methods := make([]PaymentMethodResponse, 0, len(c.PaymentMethods))
	for _, m := range c.PaymentMethods {
		methods = append(methods, PaymentMethodResponse{
			ID:                           m.ID,
			Label:                        m.Label,
			InstallmentCount:             m.InstallmentCount,
			BaseCommissionPercent:        m.BaseCommissionPercent,
			FixedCommissionAmount:        m.FixedCommissionAmount,
			InstallmentCommissionPercent: m.InstallmentCommissionPercent,
			ProcessorKind:                string(m.ProcessorKind),
		})
	}
	return CommercialConditionResponse{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		DiscountPercent: c.DiscountPercent,
		AdvancePercent:  c.AdvancePercent,
		PaymentMethods:  methods,
	}
}
