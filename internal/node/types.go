package node

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/fio-node/internal/domain"
	"github.com/dvloznov/fio-node/internal/fio"
)

// Operation is the action the node performs for every input item.
type Operation string

const (
	// OperationGetBalance reads today's account balance.
	OperationGetBalance Operation = "getBalance"
	// OperationGetTransactions lists movements for a date range.
	OperationGetTransactions Operation = "getTransactions"
	// OperationPayment submits a domestic payment.
	OperationPayment Operation = "payment"
)

// DefaultOperation is used when a request names no operation.
const DefaultOperation = OperationGetBalance

// DefaultTransactionsWindow is how many days back a transaction listing
// reaches when no start date is given.
const DefaultTransactionsWindow = 7

// Bank is the subset of the bank client the dispatcher needs.
type Bank interface {
	GetBalance(ctx context.Context, day civil.Date) (*domain.Balance, error)
	GetTransactions(ctx context.Context, from, to civil.Date) ([]domain.Transaction, error)
	SubmitPayment(ctx context.Context, order *domain.PaymentOrder) (*domain.PaymentResult, error)
}

// Parameters are the node settings, already evaluated by the host.
type Parameters struct {
	Operation Operation `json:"operation"`

	// DateFrom and DateTo bound a transaction listing. Dates or date-times;
	// empty means DefaultTransactionsWindow days ago and today.
	DateFrom string `json:"transactionsDateFrom,omitempty"`
	DateTo   string `json:"transactionsDateTo,omitempty"`

	// PaymentSource defaults to manual.
	PaymentSource fio.PaymentSource `json:"paymentSource,omitempty"`
	// Payment holds the manually defined payment fields
	// (accountFrom, accountTo, bankCode, amount, date, currency, messageForRecipient).
	Payment map[string]any `json:"payment,omitempty"`
}

// Item is one input item handed over by the host.
type Item struct {
	JSON map[string]any `json:"json"`
}

// ExecuteRequest is one node run over a batch of items.
type ExecuteRequest struct {
	Parameters     Parameters `json:"parameters"`
	Items          []Item     `json:"items"`
	ContinueOnFail bool       `json:"continueOnFail"`
}

// Output is one result item. PairedItem is the index of the input item it
// came from; a transaction listing yields one output per transaction.
type Output struct {
	JSON       any `json:"json"`
	PairedItem int `json:"pairedItem"`
}
