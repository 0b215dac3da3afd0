package domain

// Transaction is one account statement movement keyed by field name
// (transactionId, amount, counterAccountNumber, ...). Values are the scalar
// column values reported by the bank: strings or float64 numbers.
// Only names from the fixed column table ever appear as keys.
type Transaction map[string]any

// Balance is the flattened account info block of a statement response.
type Balance struct {
	Balance   float64 `json:"balance"`
	Currency  string  `json:"currency"`
	AccountID string  `json:"accountId"`
	BankID    string  `json:"bankId"`
	IBAN      string  `json:"iban"`
	BIC       string  `json:"bic"`
	DateFrom  string  `json:"dateFrom"`
	Date      string  `json:"date"` // from "dateTo"
}
