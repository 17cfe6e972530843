package routes

import (
	"cotizador/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathQuotations = "/quotations"
	PathConditions = "/conditions"
)

func addQuotationRoutes(
	rg *gin.RouterGroup,
	quotationHandler *handlers.QuotationHandler,
	authorizationHandler *handlers.AuthorizationHandler,
	settlementHandler *handlers.SettlementHandler,
) {
	rg.GET(PathConditions, quotationHandler.ListConditions)

	quotations := rg.Group(PathQuotations)
	{
		// Superficie de edición.
		quotations.POST("", quotationHandler.CreateQuotation)
		quotations.GET("/:id", quotationHandler.GetQuotation)
		quotations.PATCH("/:id/line-items", quotationHandler.PatchLineItems)
		quotations.PATCH("/:id/terms", quotationHandler.SelectTerms)
		quotations.POST("/:id/cancel", quotationHandler.CancelQuotation)

		// Asistente de autorización.
		quotations.POST("/:id/authorization", authorizationHandler.OpenWizard)
		quotations.GET("/:id/authorization", authorizationHandler.GetWizard)
		quotations.POST("/:id/authorization/next", authorizationHandler.NextStep)
		quotations.POST("/:id/authorization/back", authorizationHandler.BackStep)
		quotations.POST("/:id/authorization/commit", authorizationHandler.CommitWizard)

		// Cobro del anticipo.
		quotations.POST("/:id/settlement", settlementHandler.CreateSettlement)
		quotations.DELETE("/:id/settlement/:handle", settlementHandler.CancelSettlement)
		quotations.GET("/:id/payments", settlementHandler.GetLatestPayment)
	}
}
