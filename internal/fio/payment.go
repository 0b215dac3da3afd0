package fio

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dvloznov/fio-node/internal/domain"
)

// PaymentSource selects where the fields of a payment come from.
type PaymentSource string

const (
	// SourceManual takes the fields configured on the node.
	SourceManual PaymentSource = "manual"
	// SourceInput takes the fields of the incoming item.
	SourceInput PaymentSource = "input"
)

// requiredPaymentFields is checked in order; the first absent one is reported.
var requiredPaymentFields = []struct {
	name  string
	value func(domain.RawPayment) any
}{
	{"accountFrom", func(p domain.RawPayment) any { return p.AccountFrom }},
	{"accountTo", func(p domain.RawPayment) any { return p.AccountTo }},
	{"bankCode", func(p domain.RawPayment) any { return p.BankCode }},
	{"amount", func(p domain.RawPayment) any { return p.Amount }},
	{"date", func(p domain.RawPayment) any { return p.Date }},
	{"currency", func(p domain.RawPayment) any { return p.Currency }},
}

// ResolvePaymentSource builds the raw payment from the bag the source selects.
// Manual dates given as date-times are cut down to their date part.
func ResolvePaymentSource(source PaymentSource, manual, input map[string]any) (domain.RawPayment, error) {
	switch source {
	case SourceManual:
		raw := rawPaymentFrom(manual)
		if s, ok := raw.Date.(string); ok {
			raw.Date, _, _ = strings.Cut(s, "T")
		}
		return raw, nil
	case SourceInput:
		return rawPaymentFrom(input), nil
	default:
		return domain.RawPayment{}, fmt.Errorf("%w: unknown payment source %q", ErrInvalidParameter, source)
	}
}

func rawPaymentFrom(fields map[string]any) domain.RawPayment {
	return domain.RawPayment{
		AccountFrom:         fields["accountFrom"],
		AccountTo:           fields["accountTo"],
		BankCode:            fields["bankCode"],
		Amount:              fields["amount"],
		Date:                fields["date"],
		Currency:            fields["currency"],
		MessageForRecipient: fields["messageForRecipient"],
	}
}

// ValidatePayment checks a raw payment and returns the strictly typed order.
func ValidatePayment(raw domain.RawPayment) (*domain.PaymentOrder, error) {
	for _, field := range requiredPaymentFields {
		if isFalsy(field.value(raw)) {
			return nil, &MissingFieldError{Field: field.name}
		}
	}

	amount, err := toAmount(raw.Amount)
	if err != nil {
		return nil, err
	}

	order := &domain.PaymentOrder{
		AccountFrom: toString(raw.AccountFrom),
		AccountTo:   toString(raw.AccountTo),
		BankCode:    toString(raw.BankCode),
		Amount:      amount,
		Date:        toString(raw.Date),
		Currency:    toString(raw.Currency),
	}
	if !isFalsy(raw.MessageForRecipient) {
		msg := toString(raw.MessageForRecipient)
		order.MessageForRecipient = &msg
	}
	return order, nil
}

// isFalsy treats nil, "", zero, NaN and false as absent.
func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0 || math.IsNaN(val)
	case float32:
		return val == 0 || math.IsNaN(float64(val))
	case int:
		return val == 0
	case int64:
		return val == 0
	}
	return false
}

func toAmount(v any) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	}
	return fmt.Sprint(v)
}

// formatNumber renders account numbers and codes that arrived as JSON numbers
// without exponent or trailing zeros.
func formatNumber(f float64) string {
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
