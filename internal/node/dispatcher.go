package node

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/fio-node/internal/fio"
	"github.com/dvloznov/fio-node/internal/logger"
)

// Dispatcher runs the node operation once per input item, in order.
type Dispatcher struct {
	bank Bank
	log  zerolog.Logger
	now  func() time.Time
}

// NewDispatcher creates a dispatcher calling bank.
func NewDispatcher(bank Bank, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		bank: bank,
		log:  log,
		now:  time.Now,
	}
}

// Execute processes every item sequentially. A failing item either becomes an
// {"error": message} output (ContinueOnFail) or aborts the run.
// A logger carried by ctx takes precedence over the dispatcher's own.
func (d *Dispatcher) Execute(ctx context.Context, req ExecuteRequest) ([]Output, error) {
	outputs := make([]Output, 0, len(req.Items))

	log := d.log
	if l, ok := logger.Lookup(ctx); ok {
		log = l
	}

	for i, item := range req.Items {
		itemLog := logger.WithFields(log, map[string]interface{}{
			"operation": string(req.Parameters.Operation),
			"item":      i,
		})
		start := time.Now()

		results, err := d.executeItem(ctx, req.Parameters, item)
		if err != nil {
			itemLog.Error().Err(err).Dur("duration", time.Since(start)).Msg("Item failed")
			if req.ContinueOnFail {
				outputs = append(outputs, Output{
					JSON:       map[string]any{"error": err.Error()},
					PairedItem: i,
				})
				continue
			}
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		itemLog.Info().
			Int("outputs", len(results)).
			Dur("duration", time.Since(start)).
			Msg("Item processed")

		for _, r := range results {
			outputs = append(outputs, Output{JSON: r, PairedItem: i})
		}
	}

	return outputs, nil
}

func (d *Dispatcher) executeItem(ctx context.Context, params Parameters, item Item) ([]any, error) {
	switch params.Operation {
	case OperationGetBalance:
		balance, err := d.bank.GetBalance(ctx, d.today())
		if err != nil {
			return nil, err
		}
		return []any{balance}, nil

	case OperationGetTransactions:
		from, to, err := d.transactionRange(params)
		if err != nil {
			return nil, err
		}
		txs, err := d.bank.GetTransactions(ctx, from, to)
		if err != nil {
			return nil, err
		}
		results := make([]any, 0, len(txs))
		for _, tx := range txs {
			results = append(results, tx)
		}
		return results, nil

	case OperationPayment:
		source := params.PaymentSource
		if source == "" {
			source = fio.SourceManual
		}
		raw, err := fio.ResolvePaymentSource(source, params.Payment, item.JSON)
		if err != nil {
			return nil, err
		}
		order, err := fio.ValidatePayment(raw)
		if err != nil {
			return nil, err
		}
		result, err := d.bank.SubmitPayment(ctx, order)
		if err != nil {
			return nil, err
		}
		return []any{result}, nil

	default:
		return nil, fmt.Errorf("%w: unknown operation %q", fio.ErrInvalidParameter, params.Operation)
	}
}

func (d *Dispatcher) today() civil.Date {
	return civil.DateOf(d.now().UTC())
}

func (d *Dispatcher) transactionRange(params Parameters) (civil.Date, civil.Date, error) {
	today := d.today()
	from, err := parseDate("transactionsDateFrom", params.DateFrom, today.AddDays(-DefaultTransactionsWindow))
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	to, err := parseDate("transactionsDateTo", params.DateTo, today)
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	if to.Before(from) {
		return civil.Date{}, civil.Date{}, fmt.Errorf("%w: transactionsDateTo %s is before transactionsDateFrom %s", fio.ErrInvalidParameter, to, from)
	}
	return from, to, nil
}

// parseDate accepts YYYY-MM-DD or a date-time whose date part comes first.
func parseDate(name, value string, fallback civil.Date) (civil.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	datePart, _, _ := strings.Cut(value, "T")
	date, err := civil.ParseDate(datePart)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %s %q is not a date", fio.ErrInvalidParameter, name, value)
	}
	return date, nil
}
