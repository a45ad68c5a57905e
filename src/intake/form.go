package intake

import (
	"errors"
	"fmt"

	"github.com/username/fintrack/backend/src/models"
)

// Tab is the intake flow the user currently has open.
type Tab string

const (
	TabSalary   Tab = "salary"
	TabLending  Tab = "lending"
	TabReceived Tab = "received"
)

var ErrInvalidForm = errors.New("invalid form state")

// SalaryForm holds the in-progress salary entry.
type SalaryForm struct {
	Amount string `json:"amount"`
}

// ReceivedForm holds the in-progress general receipt entry.
type ReceivedForm struct {
	Amount      string           `json:"amount"`
	Description string           `json:"description"`
	Destination models.AccountID `json:"destination"`
}

// LendingForm holds the in-progress lending entry.
type LendingForm struct {
	Mode    models.LendingMode `json:"mode"`
	Person  string             `json:"person"`
	Amount  string             `json:"amount"`
	Account models.AccountID   `json:"account"`
}

// FormState is everything the intake screen keeps between submissions. It is
// owned by the presentation layer and handed to the submit operations, which
// apply the per-flow reset rules to it.
type FormState struct {
	ActiveTab Tab          `json:"activeTab"`
	Salary    SalaryForm   `json:"salary"`
	Received  ReceivedForm `json:"received"`
	Lending   LendingForm  `json:"lending"`
}

// NewFormState returns the state of a freshly opened intake screen.
func NewFormState() FormState {
	return FormState{
		ActiveTab: TabSalary,
		Received:  ReceivedForm{Destination: models.AccountCash},
		Lending:   LendingForm{Mode: models.LendingGive, Account: models.AccountCash},
	}
}

// Validate checks the selector fields. Free-text fields are never rejected here;
// emptiness is judged at submission time.
func (f FormState) Validate() error {
	switch f.ActiveTab {
	case TabSalary, TabLending, TabReceived:
	default:
		return fmt.Errorf("%w: unknown tab %q", ErrInvalidForm, f.ActiveTab)
	}
	if !f.Received.Destination.Valid() {
		return fmt.Errorf("%w: unknown destination account %q", ErrInvalidForm, f.Received.Destination)
	}
	if !f.Lending.Account.Valid() {
		return fmt.Errorf("%w: unknown lending account %q", ErrInvalidForm, f.Lending.Account)
	}
	if !f.Lending.Mode.Valid() {
		return fmt.Errorf("%w: unknown lending mode %q", ErrInvalidForm, f.Lending.Mode)
	}
	return nil
}

// Normalize fills unset selectors with their defaults.
func (f *FormState) Normalize() {
	if f.ActiveTab == "" {
		f.ActiveTab = TabSalary
	}
	if f.Received.Destination == "" {
		f.Received.Destination = models.AccountCash
	}
	if f.Lending.Account == "" {
		f.Lending.Account = models.AccountCash
	}
	if f.Lending.Mode == "" {
		f.Lending.Mode = models.LendingGive
	}
}
