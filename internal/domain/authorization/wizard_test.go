package authorization

import (
	"errors"
	"testing"
	"time"

	"cotizador/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow       = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	testEventDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
)

func seededWizard(t *testing.T) *Wizard {
	t.Helper()
	w := New("q-1", testEventDate)
	err := w.SetReview("cond-1", "pm-1", 0, entities.FinancialSummary{
		FinalPrice:    2000,
		AdvanceAmount: 600,
	})
	require.NoError(t, err)
	return w
}

func wizardAtCalendar(t *testing.T) *Wizard {
	t.Helper()
	w := seededWizard(t)
	require.NoError(t, w.Next(testNow))
	require.NoError(t, w.Next(testNow))
	w.SelectBankAccount("acc-1", entities.TransferKindSPEI, false)
	require.NoError(t, w.Next(testNow))
	return w
}

func wizardAtPreview(t *testing.T) *Wizard {
	t.Helper()
	w := wizardAtCalendar(t)
	w.SetCalendar(entities.PaymentCalendar{
		AdvanceDueDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, w.Next(testNow))
	return w
}

func TestWizard_SetReviewSeedsAdjustment(t *testing.T) {
	w := seededWizard(t)

	adj := w.Adjustment()
	assert.Equal(t, 2000.0, adj.TotalOriginal)
	assert.Equal(t, 2000.0, adj.TotalFinal)
	assert.Equal(t, 600.0, adj.AdvanceOriginal)
	assert.Equal(t, 30.0, adj.AdvancePercent)
	assert.Equal(t, 600.0, adj.AdvanceFinal)
}

func TestWizard_SetReviewOverrideTotalWins(t *testing.T) {
	w := New("q-1", testEventDate)
	err := w.SetReview("cond-1", "pm-1", 1800, entities.FinancialSummary{
		FinalPrice:    2000,
		AdvanceAmount: 600,
	})
	require.NoError(t, err)

	assert.Equal(t, 1800.0, w.Adjustment().TotalOriginal)
}

func TestWizard_SetReviewClampsAdvancePercent(t *testing.T) {
	t.Run("below floor", func(t *testing.T) {
		w := New("q-1", testEventDate)
		err := w.SetReview("cond-1", "pm-1", 0, entities.FinancialSummary{FinalPrice: 1000, AdvanceAmount: 50})
		require.NoError(t, err)
		assert.Equal(t, float64(MinAdvancePercent), w.Adjustment().AdvancePercent)
	})

	t.Run("above ceiling", func(t *testing.T) {
		w := New("q-1", testEventDate)
		err := w.SetReview("cond-1", "pm-1", 0, entities.FinancialSummary{FinalPrice: 1000, AdvanceAmount: 1000})
		require.NoError(t, err)
		assert.Equal(t, float64(MaxAdvancePercent), w.Adjustment().AdvancePercent)
	})

	t.Run("no advance defaults to half", func(t *testing.T) {
		w := New("q-1", testEventDate)
		err := w.SetReview("cond-1", "pm-1", 0, entities.FinancialSummary{FinalPrice: 1000})
		require.NoError(t, err)
		assert.Equal(t, 50.0, w.Adjustment().AdvancePercent)
	})
}

func TestWizard_NextRequiresReviewSelections(t *testing.T) {
	w := New("q-1", testEventDate)

	err := w.Next(testNow)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepReview, stepErr.Step)
	assert.Equal(t, StepReview, w.Step())
}

func TestWizard_DiscountsRecalculateFromOriginal(t *testing.T) {
	w := seededWizard(t)

	require.NoError(t, w.AddDiscount("pronto pago", entities.DiscountKindPercent, 10))
	require.NoError(t, w.AddDiscount("cortesía", entities.DiscountKindFixed, 100))

	adj := w.Adjustment()
	assert.Equal(t, 2000.0, adj.TotalOriginal)
	assert.Equal(t, 1700.0, adj.TotalFinal)
	assert.Equal(t, 510.0, adj.AdvanceFinal)

	// Removing the percent discount restores its exact amount: percent
	// discounts apply to the original total, so nothing compounds.
	require.NoError(t, w.RemoveDiscount(0))
	adj = w.Adjustment()
	assert.Equal(t, 1900.0, adj.TotalFinal)
	assert.Len(t, adj.Discounts, 1)
}

func TestWizard_AddDiscountValidation(t *testing.T) {
	w := seededWizard(t)

	assert.Error(t, w.AddDiscount("", entities.DiscountKindFixed, 10))
	assert.Error(t, w.AddDiscount("x", entities.DiscountKindFixed, 0))
	assert.Error(t, w.AddDiscount("x", entities.DiscountKindPercent, 101))
	assert.Error(t, w.RemoveDiscount(0))
}

func TestWizard_DiscountsFloorAtZero(t *testing.T) {
	w := seededWizard(t)

	require.NoError(t, w.AddDiscount("todo", entities.DiscountKindFixed, 5000))

	adj := w.Adjustment()
	assert.Equal(t, 0.0, adj.TotalFinal)
	assert.Equal(t, 0.0, adj.AdvanceFinal)
}

func TestWizard_SetAdvancePercentBounds(t *testing.T) {
	w := seededWizard(t)

	require.NoError(t, w.SetAdvancePercent(90))
	assert.Equal(t, 1800.0, w.Adjustment().AdvanceFinal)

	assert.Error(t, w.SetAdvancePercent(9))
	assert.Error(t, w.SetAdvancePercent(91))
	assert.Equal(t, 90.0, w.Adjustment().AdvancePercent)
}

func TestWizard_StepsAreLinear(t *testing.T) {
	w := seededWizard(t)

	require.NoError(t, w.Next(testNow))
	assert.Equal(t, StepCommercialAdjustment, w.Step())
	require.NoError(t, w.Next(testNow))
	assert.Equal(t, StepPaymentMethod, w.Step())

	// Bank account not chosen yet: blocked on this step.
	err := w.Next(testNow)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepPaymentMethod, stepErr.Step)

	w.SelectBankAccount("acc-1", entities.TransferKindTraditional, true)
	require.NoError(t, w.Next(testNow))
	assert.Equal(t, StepPaymentCalendar, w.Step())
}

func TestWizard_BackRetainsData(t *testing.T) {
	w := wizardAtCalendar(t)

	require.NoError(t, w.Back())
	assert.Equal(t, StepPaymentMethod, w.Step())
	assert.Equal(t, "acc-1", w.Method().BankAccountID)

	require.NoError(t, w.Back())
	require.NoError(t, w.Back())
	assert.Equal(t, StepReview, w.Step())
	assert.ErrorIs(t, w.Back(), ErrAtFirstStep)

	// The same forward path succeeds with everything retained.
	require.NoError(t, w.Next(testNow))
	require.NoError(t, w.Next(testNow))
	require.NoError(t, w.Next(testNow))
	assert.Equal(t, StepPaymentCalendar, w.Step())
}

func TestWizard_CalendarWindow(t *testing.T) {
	cases := []struct {
		name string
		due  time.Time
		ok   bool
	}{
		{"today is too soon", time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC), false},
		{"tomorrow is the floor", time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), true},
		{"midway", time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), true},
		{"day before event is the ceiling", time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), true},
		{"event day is too late", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := wizardAtCalendar(t)
			w.SetCalendar(entities.PaymentCalendar{AdvanceDueDate: tc.due})

			err := w.Next(testNow)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				var stepErr *StepError
				require.ErrorAs(t, err, &stepErr)
				assert.Equal(t, "advance_due_date", stepErr.Field)
			}
		})
	}
}

func TestWizard_CalendarDefaultsAndOptionalBlocks(t *testing.T) {
	w := wizardAtCalendar(t)

	w.SetCalendar(entities.PaymentCalendar{
		AdvanceDueDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Penalty:        entities.PenaltyTerms{Enabled: false, DailyPercent: 2},
	})

	cal := w.Calendar()
	assert.Equal(t, testEventDate, cal.RevenueShareDueDate)
	// Disabled blocks are zeroed so stale values never reach the record.
	assert.Equal(t, entities.PenaltyTerms{}, cal.Penalty)
}

func TestWizard_CalendarOptionalBlockValidation(t *testing.T) {
	t.Run("penalty needs a positive percent", func(t *testing.T) {
		w := wizardAtCalendar(t)
		w.SetCalendar(entities.PaymentCalendar{
			AdvanceDueDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			Penalty:        entities.PenaltyTerms{Enabled: true},
		})
		assert.Error(t, w.Next(testNow))
	})

	t.Run("early payment needs percent and days", func(t *testing.T) {
		w := wizardAtCalendar(t)
		w.SetCalendar(entities.PaymentCalendar{
			AdvanceDueDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			EarlyPayment:   entities.EarlyPaymentDiscount{Enabled: true, Percent: 5},
		})
		assert.Error(t, w.Next(testNow))
	})
}

func TestWizard_RecordOnlyFromPreview(t *testing.T) {
	w := wizardAtCalendar(t)

	_, err := w.Record(testNow, "ana")
	assert.ErrorIs(t, err, ErrNotAtPreview)

	w.SetCalendar(entities.PaymentCalendar{
		AdvanceDueDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, w.Next(testNow))

	record, err := w.Record(testNow, "ana")
	require.NoError(t, err)
	assert.Equal(t, "q-1", record.QuotationID)
	assert.Equal(t, "acc-1", record.Method.BankAccountID)
	assert.Equal(t, "ana", record.CommittedBy)
	assert.Equal(t, testNow, record.CommittedAt)
}

func TestWizard_CommittedIsTerminal(t *testing.T) {
	w := wizardAtPreview(t)
	w.MarkCommitted()

	assert.Equal(t, StepCommitted, w.Step())
	assert.ErrorIs(t, w.Next(testNow), ErrAlreadyCommitted)
	assert.ErrorIs(t, w.Back(), ErrAlreadyCommitted)
	_, err := w.Record(testNow, "ana")
	assert.ErrorIs(t, err, ErrAlreadyCommitted)
	assert.ErrorIs(t, w.SetReview("c", "m", 0, entities.FinancialSummary{}), ErrAlreadyCommitted)
}

func TestWizard_NextFromPreviewIsRejected(t *testing.T) {
	w := wizardAtPreview(t)

	err := w.Next(testNow)
	assert.True(t, errors.Is(err, ErrNotAtPreview))
}
