package intake

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/security/validation"
)

const (
	salaryDescription   = "Monthly Salary"
	receivedDescription = "Received Money"
)

// ParseAmount reads a user-typed amount. Anything that is not a positive
// decimal is reported as missing.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// FormatAmount renders amount exactly, with thousands separators in the
// integer part.
func FormatAmount(amount decimal.Decimal) string {
	formatted := humanize.BigComma(amount.BigInt())
	if _, frac, found := strings.Cut(amount.String(), "."); found {
		formatted += "." + frac
	}
	return formatted
}

// SalaryConfirmation is the question put to the user before a salary deposit.
func SalaryConfirmation(amount decimal.Decimal) string {
	return fmt.Sprintf("Are you sure you want to add Tk %s to your Salary Account?", FormatAmount(amount))
}

// BuildSalary constructs a salary deposit. Salary always lands in the salary account.
func BuildSalary(form SalaryForm, date string) (models.Transaction, bool) {
	amount, ok := ParseAmount(form.Amount)
	if !ok {
		return models.Transaction{}, false
	}
	return models.Transaction{
		Amount:      amount,
		Type:        models.Income,
		Category:    models.CategorySalary,
		Description: salaryDescription,
		Date:        date,
		AccountID:   models.AccountSalary,
	}, true
}

// BuildReceived constructs a general receipt into the selected destination.
func BuildReceived(form ReceivedForm, date string) (models.Transaction, bool) {
	amount, ok := ParseAmount(form.Amount)
	if !ok {
		return models.Transaction{}, false
	}
	account, ok := accountOrCash(form.Destination)
	if !ok {
		return models.Transaction{}, false
	}
	description := validation.CleanText(form.Description)
	if description == "" {
		description = receivedDescription
	}
	return models.Transaction{
		Amount:      amount,
		Type:        models.Income,
		Category:    models.CategoryOther,
		Description: description,
		Date:        date,
		AccountID:   account,
	}, true
}

// BuildLending constructs one side of a loan. Giving money is an expense from
// the selected account; getting it back is income into it.
func BuildLending(form LendingForm, date string) (models.Transaction, bool) {
	amount, ok := ParseAmount(form.Amount)
	if !ok {
		return models.Transaction{}, false
	}
	person := validation.CleanText(form.Person)
	if person == "" {
		return models.Transaction{}, false
	}
	account, ok := accountOrCash(form.Account)
	if !ok {
		return models.Transaction{}, false
	}

	tx := models.Transaction{
		Amount:    amount,
		Category:  models.CategoryLending,
		Date:      date,
		AccountID: account,
	}
	switch form.Mode {
	case models.LendingGive, "":
		tx.Type = models.Expense
		tx.Description = "Lent to " + person
	case models.LendingRecover:
		tx.Type = models.Income
		tx.Description = "Returned by " + person
	default:
		return models.Transaction{}, false
	}
	return tx, true
}

func accountOrCash(a models.AccountID) (models.AccountID, bool) {
	if a == "" {
		return models.AccountCash, true
	}
	return a, a.Valid()
}
