package domain

// RawPayment is a payment request as received from node parameters or from
// the previous stage's item. Fields hold whatever the caller supplied
// (string, float64, nil, ...) and are checked by fio.ValidatePayment.
type RawPayment struct {
	AccountFrom         any `json:"accountFrom"`
	AccountTo           any `json:"accountTo"`
	BankCode            any `json:"bankCode"`
	Amount              any `json:"amount"`
	Date                any `json:"date"`
	Currency            any `json:"currency"`
	MessageForRecipient any `json:"messageForRecipient"`
}

// PaymentOrder is a validated domestic payment order, safe to encode and
// submit. All fields except MessageForRecipient are non-empty and Amount is
// a positive finite number.
type PaymentOrder struct {
	AccountFrom         string  `json:"accountFrom"`
	AccountTo           string  `json:"accountTo"`
	BankCode            string  `json:"bankCode"`
	Amount              float64 `json:"amount"`
	Date                string  `json:"date"` // YYYY-MM-DD
	Currency            string  `json:"currency"`
	MessageForRecipient *string `json:"messageForRecipient,omitempty"`
}

// PaymentResult holds the status fields extracted from the bank's XML answer
// to a payment import. Missing tags leave the zero value.
type PaymentResult struct {
	ErrorCode     string  `json:"errorCode"`
	IDInstruction string  `json:"idInstruction"`
	Status        string  `json:"status"`
	SumCredit     float64 `json:"sumCredit"`
	SumDebet      float64 `json:"sumDebet"`
	Messages      string  `json:"messages"`
}
