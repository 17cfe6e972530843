package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"cotizador/internal/domain/pricing"
	"cotizador/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")

// MercadoPagoGateway settles quotation advances through Mercado Pago.
//
// Mock mode (PAYMENT_GATEWAY_MOCK / MERCADOPAGO_MOCK) approves and cancels
// everything locally without touching the provider, for local runs and CI.
type MercadoPagoGateway struct {
	client   payment.Client
	mockMode bool
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if isPaymentGatewayMockEnabled() {
		log.Printf("[settlement][gateway] mock mode enabled")
		return &MercadoPagoGateway{mockMode: true}, nil
	}

	if accessToken == "" {
		log.Printf("[settlement][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[settlement][gateway] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[settlement][gateway] Mercado Pago client initialized")

	return &MercadoPagoGateway{client: payment.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) CreateSettlement(ctx context.Context, amount float64, metadata pricing.SettlementMetadata) (string, string, json.RawMessage, error) {
	if g != nil && g.mockMode {
		log.Printf("[settlement][gateway] mock create start quotation_id=%s amount=%.2f", metadata.QuotationID, amount)

		id := strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		now := time.Now().UTC().Format(time.RFC3339Nano)
		resp := map[string]any{
			"id":                 id,
			"status":             "approved",
			"status_detail":      "accredited",
			"transaction_amount": amount,
			"description":        metadata.Concept,
			"external_reference": metadata.QuotationID,
			"date_created":       now,
			"date_approved":      now,
		}
		b, err := json.Marshal(resp)
		if err != nil {
			log.Printf("[settlement][gateway] mock response marshal failed err=%v", err)
			return "", "", nil, err
		}

		log.Printf("[settlement][gateway] mock create success provider_payment_id=%s provider_status=approved", id)
		return id, "approved", b, nil
	}

	if g == nil || g.client == nil {
		log.Printf("[settlement][gateway] gateway not configured")
		return "", "", nil, ErrMercadoPagoGatewayNotConfigured
	}
	log.Printf("[settlement][gateway] create start quotation_id=%s amount=%.2f kind=%s", metadata.QuotationID, amount, metadata.ProcessorKind)

	req := payment.Request{
		TransactionAmount: amount,
		Description:       metadata.Concept,
		ExternalReference: metadata.QuotationID,
		Metadata: map[string]any{
			"quotation_id":      metadata.QuotationID,
			"method_label":      metadata.MethodLabel,
			"processor_kind":    string(metadata.ProcessorKind),
			"installment_count": metadata.InstallmentCount,
		},
	}
	if metadata.InstallmentCount > 0 {
		req.Installments = metadata.InstallmentCount
	} else {
		req.Installments = 1
	}
	if methodID := strings.TrimSpace(os.Getenv("MERCADOPAGO_PAYMENT_METHOD_ID")); methodID != "" {
		req.PaymentMethodID = methodID
	}
	if email := sandboxPayerEmail(); email != "" {
		req.Payer = &payment.PayerRequest{Email: email}
	}

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		log.Printf("[settlement][gateway] sdk create failed err=%v", err)
		return "", "", nil, err
	}

	b, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[settlement][gateway] response marshal failed err=%v", err)
		return "", "", nil, err
	}
	log.Printf("[settlement][gateway] create success provider_payment_id=%d provider_status=%s", resp.ID, resp.Status)

	return fmt.Sprintf("%d", resp.ID), resp.Status, b, nil
}

// CancelSettlement voids a pending charge at the provider so an abandoned
// attempt never lingers as an unreconciled pending payment.
func (g *MercadoPagoGateway) CancelSettlement(ctx context.Context, handle string) error {
	if g != nil && g.mockMode {
		log.Printf("[settlement][gateway] mock cancel handle=%s", handle)
		return nil
	}
	if g == nil || g.client == nil {
		return ErrMercadoPagoGatewayNotConfigured
	}

	id, err := strconv.Atoi(strings.TrimSpace(handle))
	if err != nil {
		return fmt.Errorf("invalid gateway handle %q: %w", handle, err)
	}
	resp, err := g.client.Cancel(ctx, id)
	if err != nil {
		log.Printf("[settlement][gateway] sdk cancel failed handle=%s err=%v", handle, err)
		return err
	}
	log.Printf("[settlement][gateway] cancel success provider_payment_id=%d provider_status=%s", resp.ID, resp.Status)
	return nil
}

// sandboxPayerEmail mirrors the Mercado Pago sandbox conventions: either an
// explicit test payer email, or the documented fallback when running with a
// TEST- access token.
func sandboxPayerEmail() string {
	if email := strings.TrimSpace(os.Getenv("MERCADOPAGO_TEST_PAYER_EMAIL")); email != "" {
		return email
	}
	if strings.HasPrefix(strings.TrimSpace(os.Getenv("MERCADOPAGO_ACCESS_TOKEN")), "TEST-") {
		return "test_user_mx@testuser.com"
	}
	return ""
}

func isPaymentGatewayMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}
