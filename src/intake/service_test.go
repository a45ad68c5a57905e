package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fintrack/backend/src/models"
)

type recordingSink struct {
	got []models.Transaction
	err error
}

func (r *recordingSink) Record(_ context.Context, tx models.Transaction) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, tx)
	return nil
}

var fixedNow = time.Date(2026, time.March, 14, 22, 30, 0, 0, time.UTC)

func newTestService(sink Sink) *Service {
	return NewService(sink, WithClock(func() time.Time { return fixedNow }))
}

func accept(string) bool  { return true }
func decline(string) bool { return false }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "amount: want %s, got %s", want, got)
}

func TestSubmitSalaryConfirmed(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(sink)
	form := &SalaryForm{Amount: "50000"}

	var asked string
	tx, err := svc.SubmitSalary(context.Background(), form, ConfirmFunc(func(msg string) bool {
		asked = msg
		return true
	}))
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Len(t, sink.got, 1)

	got := sink.got[0]
	assertAmount(t, "50000", got.Amount)
	assert.Equal(t, models.Income, got.Type)
	assert.Equal(t, models.CategorySalary, got.Category)
	assert.Equal(t, "Monthly Salary", got.Description)
	assert.Equal(t, "2026-03-14", got.Date)
	assert.Equal(t, models.AccountSalary, got.AccountID)
	assert.True(t, got.Complete())

	assert.Equal(t, "Are you sure you want to add Tk 50,000 to your Salary Account?", asked)
	assert.Empty(t, form.Amount)
}

func TestSubmitSalaryDeclined(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(sink)
	form := &SalaryForm{Amount: "50000"}

	tx, err := svc.SubmitSalary(context.Background(), form, ConfirmFunc(decline))
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.Empty(t, sink.got)
	assert.Equal(t, "50000", form.Amount)
}

func TestSubmitSalaryNilConfirmerDeclines(t *testing.T) {
	sink := &recordingSink{}
	form := &SalaryForm{Amount: "50000"}

	tx, err := newTestService(sink).SubmitSalary(context.Background(), form, nil)
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.Equal(t, "50000", form.Amount)
}

func TestSubmitSalaryEmptyAmountSkipsConfirmation(t *testing.T) {
	sink := &recordingSink{}
	asked := false
	form := &SalaryForm{}

	tx, err := newTestService(sink).SubmitSalary(context.Background(), form, ConfirmFunc(func(string) bool {
		asked = true
		return true
	}))
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.False(t, asked)
	assert.Empty(t, sink.got)
}

func TestSubmitReceived(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(sink)
	form := &ReceivedForm{Amount: "1200", Destination: models.AccountSavings}

	tx, err := svc.SubmitReceived(context.Background(), form)
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Len(t, sink.got, 1)

	got := sink.got[0]
	assertAmount(t, "1200", got.Amount)
	assert.Equal(t, models.Income, got.Type)
	assert.Equal(t, models.CategoryOther, got.Category)
	assert.Equal(t, "Received Money", got.Description)
	assert.Equal(t, models.AccountSavings, got.AccountID)
	assert.Equal(t, "2026-03-14", got.Date)

	assert.Empty(t, form.Amount)
	assert.Empty(t, form.Description)
	assert.Equal(t, models.AccountSavings, form.Destination)
}

func TestSubmitReceivedKeepsDescription(t *testing.T) {
	sink := &recordingSink{}
	form := &ReceivedForm{Amount: "300.50", Description: "  Gift  ", Destination: models.AccountCash}

	_, err := newTestService(sink).SubmitReceived(context.Background(), form)
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	assert.Equal(t, "Gift", sink.got[0].Description)
	assertAmount(t, "300.5", sink.got[0].Amount)
}

func TestSubmitLending(t *testing.T) {
	tests := []struct {
		name     string
		mode     models.LendingMode
		wantType models.TransactionType
		wantDesc string
	}{
		{"give", models.LendingGive, models.Expense, "Lent to Alex"},
		{"recover", models.LendingRecover, models.Income, "Returned by Alex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			form := &LendingForm{Mode: tt.mode, Person: "Alex", Amount: "500", Account: models.AccountCash}

			tx, err := newTestService(sink).SubmitLending(context.Background(), form)
			require.NoError(t, err)
			require.NotNil(t, tx)
			require.Len(t, sink.got, 1)

			got := sink.got[0]
			assertAmount(t, "500", got.Amount)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, models.CategoryLending, got.Category)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.Equal(t, models.AccountCash, got.AccountID)

			assert.Empty(t, form.Amount)
			assert.Empty(t, form.Person)
			assert.Equal(t, tt.mode, form.Mode)
			assert.Equal(t, models.AccountCash, form.Account)
		})
	}
}

func TestSubmitLendingRequiresBothFields(t *testing.T) {
	tests := []struct {
		name string
		form LendingForm
	}{
		{"missing person", LendingForm{Mode: models.LendingGive, Amount: "500", Account: models.AccountCash}},
		{"missing amount", LendingForm{Mode: models.LendingGive, Person: "Alex", Account: models.AccountCash}},
		{"blank person", LendingForm{Mode: models.LendingGive, Person: "   ", Amount: "500", Account: models.AccountCash}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			form := tt.form

			tx, err := newTestService(sink).SubmitLending(context.Background(), &form)
			require.NoError(t, err)
			assert.Nil(t, tx)
			assert.Empty(t, sink.got)
			assert.Equal(t, tt.form, form)
		})
	}
}

func TestEmptyAmountIsNoOpForEveryFlow(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(sink)
	ctx := context.Background()

	salary := SalaryForm{}
	_, err := svc.SubmitSalary(ctx, &salary, ConfirmFunc(accept))
	require.NoError(t, err)

	received := ReceivedForm{Description: "Bonus", Destination: models.AccountSavings}
	_, err = svc.SubmitReceived(ctx, &received)
	require.NoError(t, err)

	lending := LendingForm{Mode: models.LendingRecover, Person: "Alex", Account: models.AccountSalary}
	_, err = svc.SubmitLending(ctx, &lending)
	require.NoError(t, err)

	assert.Empty(t, sink.got)
	assert.Equal(t, SalaryForm{}, salary)
	assert.Equal(t, ReceivedForm{Description: "Bonus", Destination: models.AccountSavings}, received)
	assert.Equal(t, LendingForm{Mode: models.LendingRecover, Person: "Alex", Account: models.AccountSalary}, lending)
}

func TestSinkErrorLeavesFormUntouched(t *testing.T) {
	boom := errors.New("disk full")
	sink := &recordingSink{err: boom}
	svc := newTestService(sink)

	form := &ReceivedForm{Amount: "10", Description: "Tip", Destination: models.AccountCash}
	tx, err := svc.SubmitReceived(context.Background(), form)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, tx)
	assert.Equal(t, "10", form.Amount)
	assert.Equal(t, "Tip", form.Description)

	salary := &SalaryForm{Amount: "50000"}
	_, err = svc.SubmitSalary(context.Background(), salary, ConfirmFunc(accept))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "50000", salary.Amount)
}

func TestTodayUsesLocation(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*60*60)
	svc := NewService(&recordingSink{}, WithClock(func() time.Time { return fixedNow }), WithLocation(dhaka))
	assert.Equal(t, "2026-03-15", svc.Today())

	utc := NewService(&recordingSink{}, WithClock(func() time.Time { return fixedNow }))
	assert.Equal(t, "2026-03-14", utc.Today())
}

func TestDateIsTodayWithRealClock(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(sink)
	form := &ReceivedForm{Amount: "1"}

	before := time.Now().UTC().Format(models.DateLayout)
	_, err := svc.SubmitReceived(context.Background(), form)
	require.NoError(t, err)
	after := time.Now().UTC().Format(models.DateLayout)

	require.Len(t, sink.got, 1)
	assert.Contains(t, []string{before, after}, sink.got[0].Date)
}
