package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cotizador/internal/domain/authorization"
	"cotizador/internal/domain/entities"
	"cotizador/internal/domain/pricing"
	"cotizador/internal/usecase/interfaces"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoWizardSession     = errors.New("no authorization session for this quotation")
	ErrCommitInFlight      = errors.New("commit already in flight for this quotation")
	ErrAlreadyAuthorized   = errors.New("quotation already authorized")
	ErrDateUnavailable     = errors.New("event date is no longer available")
	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrCommitFailed        = errors.New("authorization commit rejected")
)

// WizardState is the read model of an authorization session handed back to
// the HTTP layer after every transition.
type WizardState struct {
	QuotationID     string
	Step            authorization.Step
	ConditionID     string
	PaymentMethodID string
	Adjustment      entities.CommercialAdjustment
	Method          entities.PaymentMethodSelection
	Calendar        entities.PaymentCalendar
}

// StepInput carries the payload for the wizard's current step. Only the
// fields for that step are consulted; the rest are ignored.
type StepInput struct {
	// Review
	ConditionID     string
	PaymentMethodID string
	OverrideTotal   float64

	// Commercial adjustment
	AddDiscounts          []entities.AdjustmentDiscount
	RemoveDiscountIndexes []int
	AdvancePercent        *float64
	Notes                 *string

	// Payment method selection
	BankAccountID string
	TransferKind  entities.TransferKind
	RequiresProof *bool

	// Payment calendar
	Calendar *entities.PaymentCalendar
}

// IAuthorizationUseCase drives the 5-step authorization wizard and its
// at-most-once commit.
type IAuthorizationUseCase interface {
	Open(ctx context.Context, quotationID string) (WizardState, error)
	Get(ctx context.Context, quotationID string) (WizardState, error)
	Next(ctx context.Context, quotationID string, input StepInput) (WizardState, error)
	Back(ctx context.Context, quotationID string) (WizardState, error)
	Commit(ctx context.Context, quotationID, committedBy string) (entities.AuthorizationRecord, error)
}

type AuthorizationUseCase struct {
	quotations             interfaces.IQuotationRepository
	catalog                interfaces.ICommercialConditionCatalog
	accounts               interfaces.IBankAccountCatalog
	availability           interfaces.IDateAvailability
	records                interfaces.IAuthorizationRecordRepository
	salesCommissionPercent float64

	mu         sync.Mutex
	sessions   map[string]*authorization.Wizard
	committing map[string]bool
}

var _ IAuthorizationUseCase = (*AuthorizationUseCase)(nil)

func NewAuthorizationUseCase(
	quotations interfaces.IQuotationRepository,
	catalog interfaces.ICommercialConditionCatalog,
	accounts interfaces.IBankAccountCatalog,
	availability interfaces.IDateAvailability,
	records interfaces.IAuthorizationRecordRepository,
	salesCommissionPercent float64,
) *AuthorizationUseCase {
	return &AuthorizationUseCase{
		quotations:             quotations,
		catalog:                catalog,
		accounts:               accounts,
		availability:           availability,
		records:                records,
		salesCommissionPercent: salesCommissionPercent,
		sessions:               make(map[string]*authorization.Wizard),
		committing:             make(map[string]bool),
	}
}

// Open starts (or resumes) the single active wizard session for a quotation.
// Reopening returns the existing session with all entered data retained.
func (u *AuthorizationUseCase) Open(ctx context.Context, quotationID string) (WizardState, error) {
	quotationID = strings.TrimSpace(quotationID)
	if quotationID == "" {
		return WizardState{}, ErrInvalidQuotationID
	}

	u.mu.Lock()
	if w, ok := u.sessions[quotationID]; ok {
		state := stateOf(w)
		u.mu.Unlock()
		return state, nil
	}
	u.mu.Unlock()

	q, err := u.quotations.GetByID(ctx, quotationID)
	if err != nil {
		return WizardState{}, err
	}
	if q.ID == "" {
		return WizardState{}, ErrQuotationNotFound
	}
	if q.Status == entities.QuotationStatusAprobada {
		return WizardState{}, ErrAlreadyAuthorized
	}
	if q.Status != entities.QuotationStatusPendiente {
		return WizardState{}, ErrQuotationNotPending
	}

	w := authorization.New(q.ID, q.EventDate)

	u.mu.Lock()
	defer u.mu.Unlock()
	// A concurrent Open may have raced us; the stored session wins.
	if existing, ok := u.sessions[quotationID]; ok {
		return stateOf(existing), nil
	}
	u.sessions[quotationID] = w
	log.Printf("[authorization][usecase] session opened quotation_id=%s", quotationID)
	return stateOf(w), nil
}

func (u *AuthorizationUseCase) Get(ctx context.Context, quotationID string) (WizardState, error) {
	w, err := u.session(quotationID)
	if err != nil {
		return WizardState{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return stateOf(w), nil
}

// Next applies the step payload to the current step, validates it, and
// advances one state. Validation failure leaves the wizard where it is.
func (u *AuthorizationUseCase) Next(ctx context.Context, quotationID string, input StepInput) (WizardState, error) {
	w, err := u.session(quotationID)
	if err != nil {
		return WizardState{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	switch w.Step() {
	case authorization.StepReview:
		if err := u.applyReview(ctx, w, input); err != nil {
			return WizardState{}, err
		}
	case authorization.StepCommercialAdjustment:
		if err := applyAdjustment(w, input); err != nil {
			return WizardState{}, err
		}
	case authorization.StepPaymentMethod:
		if err := u.applyMethodSelection(ctx, w, input); err != nil {
			return WizardState{}, err
		}
	case authorization.StepPaymentCalendar:
		if input.Calendar != nil {
			w.SetCalendar(*input.Calendar)
		}
	}

	if err := w.Next(time.Now().UTC()); err != nil {
		return WizardState{}, err
	}
	log.Printf("[authorization][usecase] advanced quotation_id=%s step=%s", quotationID, w.Step())
	return stateOf(w), nil
}

func (u *AuthorizationUseCase) Back(ctx context.Context, quotationID string) (WizardState, error) {
	w, err := u.session(quotationID)
	if err != nil {
		return WizardState{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := w.Back(); err != nil {
		return WizardState{}, err
	}
	return stateOf(w), nil
}

// Commit finalizes the wizard from Preview: re-checks date availability,
// writes the immutable record (conditional on none existing) and approves the
// quotation. At most once per quotation; on any failure the wizard stays at
// Preview and nothing is partially committed.
func (u *AuthorizationUseCase) Commit(ctx context.Context, quotationID, committedBy string) (entities.AuthorizationRecord, error) {
	w, err := u.session(quotationID)
	if err != nil {
		return entities.AuthorizationRecord{}, err
	}

	u.mu.Lock()
	if u.committing[quotationID] {
		u.mu.Unlock()
		return entities.AuthorizationRecord{}, ErrCommitInFlight
	}
	u.committing[quotationID] = true
	u.mu.Unlock()
	defer func() {
		u.mu.Lock()
		delete(u.committing, quotationID)
		u.mu.Unlock()
	}()

	q, err := u.quotations.GetByID(ctx, quotationID)
	if err != nil {
		return entities.AuthorizationRecord{}, err
	}
	if q.ID == "" {
		return entities.AuthorizationRecord{}, ErrQuotationNotFound
	}
	if q.Status == entities.QuotationStatusAprobada {
		// Second commit attempt on an approved quotation: conflict, not a
		// duplicate charge.
		return entities.AuthorizationRecord{}, ErrAlreadyAuthorized
	}

	free, err := u.availability.IsDateAvailable(ctx, q.EventDate, q.EventID)
	if err != nil {
		return entities.AuthorizationRecord{}, fmt.Errorf("check availability: %w", err)
	}
	if !free {
		return entities.AuthorizationRecord{}, ErrDateUnavailable
	}

	rec, err := w.Record(time.Now().UTC(), committedBy)
	if err != nil {
		return entities.AuthorizationRecord{}, err
	}

	created, err := u.records.Create(ctx, rec)
	if err != nil {
		log.Printf("[authorization][usecase] commit rejected quotation_id=%s err=%v", quotationID, err)
		return entities.AuthorizationRecord{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	if created.QuotationID == "" {
		// Conditional write lost: a record already exists. The quotation was
		// still pendiente when we loaded it, so a previous commit persisted
		// the record but never flipped the status. Finish that transition
		// here; otherwise the quotation is stuck pendiente forever.
		existing, err := u.records.GetByQuotationID(ctx, quotationID)
		if err != nil || existing.QuotationID == "" {
			return entities.AuthorizationRecord{}, fmt.Errorf("%w: record exists but could not be loaded: %v", ErrCommitFailed, err)
		}
		log.Printf("[authorization][usecase] resuming interrupted commit quotation_id=%s", quotationID)
		return u.finishCommit(ctx, quotationID, existing)
	}

	return u.finishCommit(ctx, quotationID, created)
}

// finishCommit flips the quotation to aprobada and closes the wizard session.
// Idempotent: called both on a fresh commit and when resuming one whose
// status update previously failed.
func (u *AuthorizationUseCase) finishCommit(ctx context.Context, quotationID string, rec entities.AuthorizationRecord) (entities.AuthorizationRecord, error) {
	if _, err := u.quotations.UpdateStatus(ctx, quotationID, entities.QuotationStatusAprobada); err != nil {
		return entities.AuthorizationRecord{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	u.mu.Lock()
	if w, ok := u.sessions[quotationID]; ok {
		w.MarkCommitted()
		delete(u.sessions, quotationID)
	}
	u.mu.Unlock()
	log.Printf("[authorization][usecase] committed quotation_id=%s advance_final=%.2f", quotationID, rec.Adjustment.AdvanceFinal)
	return rec, nil
}

func (u *AuthorizationUseCase) session(quotationID string) (*authorization.Wizard, error) {
	quotationID = strings.TrimSpace(quotationID)
	if quotationID == "" {
		return nil, ErrInvalidQuotationID
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	w, ok := u.sessions[quotationID]
	if !ok {
		return nil, ErrNoWizardSession
	}
	return w, nil
}

// applyReview resolves the operator's selections, prices them through the
// shared engine and seeds the wizard. Quotation and condition load
// concurrently; the seed is only computed once both are in.
func (u *AuthorizationUseCase) applyReview(ctx context.Context, w *authorization.Wizard, input StepInput) error {
	conditionID := strings.TrimSpace(input.ConditionID)
	methodID := strings.TrimSpace(input.PaymentMethodID)
	if conditionID == "" {
		return ErrConditionNotFound
	}

	var q entities.Quotation
	var cond entities.CommercialCondition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		q, err = u.quotations.GetByID(gctx, w.QuotationID())
		if err == nil && q.ID == "" {
			return ErrQuotationNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		cond, err = u.catalog.GetByID(gctx, conditionID)
		if err == nil && cond.ID == "" {
			return ErrConditionNotFound
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var method *entities.PaymentMethod
	if methodID != "" {
		m, ok := cond.MethodByID(methodID)
		if !ok {
			return ErrPaymentMethodNotFound
		}
		method = &m
	}

	summary := pricing.ComputeSummary(pricing.Input{
		LineItems:              q.LineItems,
		Condition:              &cond,
		Method:                 method,
		SalesCommissionPercent: u.salesCommissionPercent,
	})
	return w.SetReview(conditionID, methodID, input.OverrideTotal, summary)
}

func applyAdjustment(w *authorization.Wizard, input StepInput) error {
	// Removals run first, by descending index, so the indexes the caller saw
	// stay valid while we delete.
	idxs := append([]int(nil), input.RemoveDiscountIndexes...)
	for i := 0; i < len(idxs); i++ {
		for j := i + 1; j < len(idxs); j++ {
			if idxs[j] > idxs[i] {
				idxs[i], idxs[j] = idxs[j], idxs[i]
			}
		}
	}
	for _, idx := range idxs {
		if err := w.RemoveDiscount(idx); err != nil {
			return err
		}
	}
	for _, d := range input.AddDiscounts {
		if err := w.AddDiscount(d.Concept, d.Kind, d.Value); err != nil {
			return err
		}
	}
	if input.AdvancePercent != nil {
		if err := w.SetAdvancePercent(*input.AdvancePercent); err != nil {
			return err
		}
	}
	if input.Notes != nil {
		w.SetNotes(*input.Notes)
	}
	return nil
}

// applyMethodSelection validates the chosen account against the catalog,
// falling back to the account flagged principal when none was chosen yet.
func (u *AuthorizationUseCase) applyMethodSelection(ctx context.Context, w *authorization.Wizard, input StepInput) error {
	accounts, err := u.accounts.List(ctx)
	if err != nil {
		return err
	}

	accountID := strings.TrimSpace(input.BankAccountID)
	if accountID == "" && w.Method().BankAccountID == "" {
		for _, a := range accounts {
			if a.Principal {
				accountID = a.ID
				break
			}
		}
	}
	if accountID == "" {
		// Nothing chosen and no principal account: leave the step to fail
		// its own validation in Next.
		return nil
	}

	found := false
	for _, a := range accounts {
		if a.ID == accountID {
			found = true
			break
		}
	}
	if !found {
		return ErrBankAccountNotFound
	}

	kind := input.TransferKind
	if kind == "" {
		kind = entities.TransferKindSPEI
	}
	requiresProof := kind != entities.TransferKindSPEI
	if input.RequiresProof != nil {
		requiresProof = *input.RequiresProof
	}
	w.SelectBankAccount(accountID, kind, requiresProof)
	return nil
}

func stateOf(w *authorization.Wizard) WizardState {
	return WizardState{
		QuotationID:     w.QuotationID(),
		Step:            w.Step(),
		ConditionID:     w.ConditionID(),
		PaymentMethodID: w.PaymentMethodID(),
		Adjustment:      w.Adjustment(),
		Method:          w.Method(),
		Calendar:        w.Calendar(),
	}
}
