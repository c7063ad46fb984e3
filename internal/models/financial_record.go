package models

import (
	"errors"

	"github.com/church-console/backend/pkg/rowmap"
)

// Transaction types. The sign of a record lives here, never in Amount.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// MaxTransactionAmount is the upper bound accepted by the ledger form.
const MaxTransactionAmount = 1_000_000

var (
	ErrAmountNotPositive = errors.New("amount must be greater than 0")
	ErrAmountTooHigh     = errors.New("amount exceeds 1,000,000")
	ErrRecordType        = errors.New("type must be income or expense")
)

// IncomeCategories and ExpenseCategories are the ledger's preset categories.
var (
	IncomeCategories  = []string{"Tithes", "Offerings", "Donations", "Events", "Missions", "Building Fund", "Other Income"}
	ExpenseCategories = []string{"Utilities", "Maintenance", "Salaries", "Ministry", "Events", "Missions", "Office Supplies", "Equipment", "Insurance", "Other Expenses"}
)

// FinancialRecord is one ledger entry.
type FinancialRecord struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

// Validate enforces the ledger invariants.
func (r FinancialRecord) Validate() error { return r.ValidateFields() }

// ValidateFields runs the checks of the named view fields only.
func (r FinancialRecord) ValidateFields(fields ...string) error {
	if covers(fields, "type") && r.Type != TypeIncome && r.Type != TypeExpense {
		return ErrRecordType
	}
	if covers(fields, "amount") {
		if r.Amount <= 0 {
			return ErrAmountNotPositive
		}
		if r.Amount > MaxTransactionAmount {
			return ErrAmountTooHigh
		}
	}
	return nil
}

// Signed returns the amount with the sign implied by Type.
func (r FinancialRecord) Signed() float64 {
	if r.Type == TypeExpense {
		return -r.Amount
	}
	return r.Amount
}

// FinancialRecordSchema maps FinancialRecord to the financial_records table.
var FinancialRecordSchema = &rowmap.Schema[FinancialRecord]{
	Table:   "financial_records",
	Key:     "id",
	Created: "created_at",
	Order:   rowmap.Order{Column: "date", Desc: true},
	Fields: []rowmap.Field[FinancialRecord]{
		rowmap.Col("id", "id", func(r *FinancialRecord) any { return &r.ID }),
		rowmap.Col("type", "type", func(r *FinancialRecord) any { return &r.Type }),
		rowmap.Col("amount", "amount", func(r *FinancialRecord) any { return &r.Amount }),
		rowmap.Col("category", "category", func(r *FinancialRecord) any { return &r.Category }),
		rowmap.Col("description", "description", func(r *FinancialRecord) any { return &r.Description }),
		rowmap.Col("date", "date", func(r *FinancialRecord) any { return &r.Date }),
		rowmap.Col("status", "status", func(r *FinancialRecord) any { return &r.Status }),
		rowmap.Col("createdAt", "created_at", func(r *FinancialRecord) any { return &r.CreatedAt }),
	},
}
