package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"cotizador/internal/domain/authorization"
	"cotizador/internal/domain/entities"
	"cotizador/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TestMain mirrors the `percent` rule registration done by routes.Run so
// handlers binding percentage-tagged DTOs can run outside the full router.
func TestMain(m *testing.M) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
			p := fl.Field().Float()
			return p >= 0 && p <= 100
		})
	}
	os.Exit(m.Run())
}

type stubAuthorizationUseCase struct {
	open   func(ctx context.Context, quotationID string) (usecase.WizardState, error)
	get    func(ctx context.Context, quotationID string) (usecase.WizardState, error)
	next   func(ctx context.Context, quotationID string, input usecase.StepInput) (usecase.WizardState, error)
	back   func(ctx context.Context, quotationID string) (usecase.WizardState, error)
	commit func(ctx context.Context, quotationID, committedBy string) (entities.AuthorizationRecord, error)
}

func (s *stubAuthorizationUseCase) Open(ctx context.Context, quotationID string) (usecase.WizardState, error) {
	return s.open(ctx, quotationID)
}

func (s *stubAuthorizationUseCase) Get(ctx context.Context, quotationID string) (usecase.WizardState, error) {
	return s.get(ctx, quotationID)
}

func (s *stubAuthorizationUseCase) Next(ctx context.Context, quotationID string, input usecase.StepInput) (usecase.WizardState, error) {
	return s.next(ctx, quotationID, input)
}

func (s *stubAuthorizationUseCase) Back(ctx context.Context, quotationID string) (usecase.WizardState, error) {
	return s.back(ctx, quotationID)
}

func (s *stubAuthorizationUseCase) Commit(ctx context.Context, quotationID, committedBy string) (entities.AuthorizationRecord, error) {
	return s.commit(ctx, quotationID, committedBy)
}

func TestAuthorizationHandler_OpenWizard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("ok", func(t *testing.T) {
		uc := &stubAuthorizationUseCase{
			open: func(_ context.Context, quotationID string) (usecase.WizardState, error) {
				return usecase.WizardState{QuotationID: quotationID, Step: authorization.StepReview}, nil
			},
		}
		h := NewAuthorizationHandler(uc)
		r := gin.New()
		r.POST("/v1/quotations/:id/authorization", h.OpenWizard)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotations/q-1/authorization", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response json: %v", err)
		}
		if resp["step"] != "review" {
			t.Fatalf("expected step review, got %v", resp["step"])
		}
	})

	t.Run("already authorized maps to conflict", func(t *testing.T) {
		uc := &stubAuthorizationUseCase{
			open: func(context.Context, string) (usecase.WizardState, error) {
				return usecase.WizardState{}, usecase.ErrAlreadyAuthorized
			},
		}
		h := NewAuthorizationHandler(uc)
		r := gin.New()
		r.POST("/v1/quotations/:id/authorization", h.OpenWizard)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotations/q-1/authorization", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestAuthorizationHandler_NextStep(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("step validation error maps to 400 with field detail", func(t *testing.T) {
		uc := &stubAuthorizationUseCase{
			next: func(context.Context, string, usecase.StepInput) (usecase.WizardState, error) {
				return usecase.WizardState{}, &authorization.StepError{
					Step: authorization.StepCommercialAdjustment, Field: "advance_percent", Reason: "out of bounds",
				}
			},
		}
		h := NewAuthorizationHandler(uc)
		r := gin.New()
		r.POST("/v1/quotations/:id/authorization/next", h.NextStep)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotations/q-1/authorization/next", bytes.NewBufferString(`{"advance_percent":5}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var resp map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response json: %v", err)
		}
		if resp["code"] != "STEP_VALIDATION_FAILED" {
			t.Fatalf("expected STEP_VALIDATION_FAILED, got %v", resp["code"])
		}
	})

	t.Run("payload forwarded to the use case", func(t *testing.T) {
		uc := &stubAuthorizationUseCase{
			next: func(_ context.Context, _ string, input usecase.StepInput) (usecase.WizardState, error) {
				if input.ConditionID != "cond-1" || input.PaymentMethodID != "pm-spei" {
					t.Fatalf("unexpected input: %+v", input)
				}
				return usecase.WizardState{Step: authorization.StepCommercialAdjustment}, nil
			},
		}
		h := NewAuthorizationHandler(uc)
		r := gin.New()
		r.POST("/v1/quotations/:id/authorization/next", h.NextStep)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotations/q-1/authorization/next", bytes.NewBufferString(`{"condition_id":"cond-1","payment_method_id":"pm-spei"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestAuthorizationHandler_CommitWizard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("created with empty body", func(t *testing.T) {
		uc := &stubAuthorizationUseCase{
			commit: func(_ context.Context, quotationID, committedBy string) (entities.AuthorizationRecord, error) {
				if committedBy != "" {
					t.Fatalf("expected empty committed_by, got %q", committedBy)
				}
				return entities.AuthorizationRecord{QuotationID: quotationID}, nil
			},
		}
		h := NewAuthorizationHandler(uc)
		r := gin.New()
		r.POST("/v1/quotations/:id/authorization/commit", h.CommitWizard)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotations/q-1/authorization/commit", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	})

	t.Run("date unavailable maps to conflict", func(t *testing.T) {
		uc := &stubAuthorizationUseCase{
			commit: func(context.Context, string, string) (entities.AuthorizationRecord, error) {
				return entities.AuthorizationRecord{}, usecase.ErrDateUnavailable
			},
		}
		h := NewAuthorizationHandler(uc)
		r := gin.New()
		r.POST("/v1/quotations/:id/authorization/commit", h.CommitWizard)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotations/q-1/authorization/commit", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("commit failure maps to bad gateway", func(t *testing.T) {
		uc := &stubAuthorizationUseCase{
			commit: func(context.Context, string, string) (entities.AuthorizationRecord, error) {
				return entities.AuthorizationRecord{}, usecase.ErrCommitFailed
			},
		}
		h := NewAuthorizationHandler(uc)
		r := gin.New()
		r.POST("/v1/quotations/:id/authorization/commit", h.CommitWizard)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotations/q-1/authorization/commit", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", w.Code)
		}
	})
}
