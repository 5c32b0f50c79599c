package enums

import "fmt"

// FinancialRecordType classifies a ledger entry as money in or money out.
type FinancialRecordType string

const (
	FinancialRecordTypeIncome  FinancialRecordType = "income"
	FinancialRecordTypeExpense FinancialRecordType = "expense"
)

var validFinancialRecordTypes = []FinancialRecordType{
	FinancialRecordTypeIncome,
	FinancialRecordTypeExpense,
}

// IsValid reports whether the value matches the canonical record type enum.
func (t FinancialRecordType) IsValid() bool {
	for _, candidate := range validFinancialRecordTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseFinancialRecordType converts raw input into FinancialRecordType.
func ParseFinancialRecordType(value string) (FinancialRecordType, error) {
	for _, candidate := range validFinancialRecordTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid financial record type %q", value)
}
