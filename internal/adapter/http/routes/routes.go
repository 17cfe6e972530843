package routes

import (
	"log"
	"os"
	"strconv"

	_ "cotizador/docs" // This will be auto-generated
	"cotizador/internal/adapter/http/handlers"
	repository2 "cotizador/internal/adapter/persistence/repository"
	"cotizador/internal/infrastructure/database"
	"cotizador/internal/infrastructure/payments"
	"cotizador/internal/usecase"
	"cotizador/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

// Run will start the server
func Run() {
	setMiddlewares()
	registerValidators()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()

	quotationRepo := repository2.NewQuotationDynamoRepository(ddb)
	conditionRepo := repository2.NewConditionDynamoRepository(ddb)
	accountRepo := repository2.NewBankAccountDynamoRepository(ddb)
	availabilityRepo := repository2.NewAvailabilityDynamoRepository(ddb)
	authorizationRepo := repository2.NewAuthorizationDynamoRepository(ddb)
	paymentRepo := repository2.NewPaymentDynamoRepository(ddb)

	salesCommission := salesCommissionPercent()

	quotationUseCase := usecase.NewQuotationUseCase(quotationRepo, conditionRepo, salesCommission)
	authorizationUseCase := usecase.NewAuthorizationUseCase(
		quotationRepo, conditionRepo, accountRepo, availabilityRepo, authorizationRepo, salesCommission)

	var paymentGateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"))
	if err != nil {
		log.Printf("Mercado Pago gateway not configured: %v", err)
	} else {
		paymentGateway = mpGateway
	}

	settlementUseCase := usecase.NewSettlementUseCase(
		quotationRepo, conditionRepo, paymentRepo, paymentGateway, salesCommission)

	quotationHandler := handlers.NewQuotationHandler(quotationUseCase)
	authorizationHandler := handlers.NewAuthorizationHandler(authorizationUseCase)
	settlementHandler := handlers.NewSettlementHandler(settlementUseCase)

	// Rutas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addQuotationRoutes(v1, quotationHandler, authorizationHandler, settlementHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}

// registerValidators adds the `percent` rule (0 to 100 inclusive) to gin's
// binding engine so DTOs can tag percentage fields.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
			p := fl.Field().Float()
			return p >= 0 && p <= 100
		})
	}
}

func salesCommissionPercent() float64 {
	raw := os.Getenv("SALES_COMMISSION_PERCENT")
	if raw == "" {
		return 10
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || p < 0 || p > 100 {
		log.Printf("invalid SALES_COMMISSION_PERCENT=%q, using default", raw)
		return 10
	}
	return p
}

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
