package enums

import "fmt"

// TransactionType maps to the transaction_type column of the transactions table.
type TransactionType string

const (
	TransactionTypeStockOrders TransactionType = "stock_orders"
	TransactionTypeSales       TransactionType = "sales"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeStockOrders,
	TransactionTypeSales,
}

// IsValid reports whether the value matches a known transaction kind.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
