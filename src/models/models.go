package models

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Category tags a transaction. The intake flows only produce SALARY, OTHER and
// LENDING; the rest exist so records written by other producers still validate.
type Category string

const (
	CategorySalary        Category = "SALARY"
	CategoryOther         Category = "OTHER"
	CategoryLending       Category = "LENDING"
	CategoryFood          Category = "FOOD"
	CategoryTransport     Category = "TRANSPORT"
	CategoryUtilities     Category = "UTILITIES"
	CategoryShopping      Category = "SHOPPING"
	CategoryHealth        Category = "HEALTH"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryEducation     Category = "EDUCATION"
	CategoryInvestment    Category = "INVESTMENT"
)

var knownCategories = map[Category]bool{
	CategorySalary:        true,
	CategoryOther:         true,
	CategoryLending:       true,
	CategoryFood:          true,
	CategoryTransport:     true,
	CategoryUtilities:     true,
	CategoryShopping:      true,
	CategoryHealth:        true,
	CategoryEntertainment: true,
	CategoryEducation:     true,
	CategoryInvestment:    true,
}

func (c Category) Valid() bool {
	return knownCategories[c]
}

// AccountID names one of the money pools a transaction debits or credits.
type AccountID string

const (
	AccountCash    AccountID = "cash"
	AccountSalary  AccountID = "salary"
	AccountSavings AccountID = "savings"
)

// Accounts lists the closed set of account identifiers in display order.
var Accounts = []AccountID{AccountCash, AccountSalary, AccountSavings}

func (a AccountID) Valid() bool {
	switch a {
	case AccountCash, AccountSalary, AccountSavings:
		return true
	}
	return false
}

// LendingMode says whether a lending entry is money given out or money coming back.
type LendingMode string

const (
	LendingGive    LendingMode = "give"
	LendingRecover LendingMode = "recover"
)

func (m LendingMode) Valid() bool {
	return m == LendingGive || m == LendingRecover
}
