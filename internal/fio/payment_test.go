package fio

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvloznov/fio-node/internal/domain"
)

func validRaw() domain.RawPayment {
	return domain.RawPayment{
		AccountFrom: "2400123456",
		AccountTo:   "1234567890",
		BankCode:    "0100",
		Amount:      "100",
		Date:        "2024-05-01",
		Currency:    "CZK",
	}
}

func TestResolvePaymentSource_Manual(t *testing.T) {
	manual := map[string]any{
		"accountFrom": "1",
		"accountTo":   "2",
		"bankCode":    "0100",
		"amount":      "100",
		"date":        "2024-05-01T10:00:00Z",
		"currency":    "CZK",
	}
	input := map[string]any{"accountFrom": "ignored"}

	raw, err := ResolvePaymentSource(SourceManual, manual, input)
	require.NoError(t, err)
	require.Equal(t, "1", raw.AccountFrom)
	require.Equal(t, "2024-05-01", raw.Date)

	order, err := ValidatePayment(raw)
	require.NoError(t, err)
	require.Equal(t, &domain.PaymentOrder{
		AccountFrom: "1",
		AccountTo:   "2",
		BankCode:    "0100",
		Amount:      100,
		Date:        "2024-05-01",
		Currency:    "CZK",
	}, order)
	require.Nil(t, order.MessageForRecipient)
}

func TestResolvePaymentSource_Input(t *testing.T) {
	input := map[string]any{
		"accountFrom":         "1",
		"accountTo":           2.0,
		"amount":              12.5,
		"date":                "2024-05-01T10:00:00Z",
		"messageForRecipient": "rent",
		"unrelated":           true,
	}

	raw, err := ResolvePaymentSource(SourceInput, map[string]any{"accountFrom": "manual"}, input)
	require.NoError(t, err)
	require.Equal(t, domain.RawPayment{
		AccountFrom:         "1",
		AccountTo:           2.0,
		Amount:              12.5,
		Date:                "2024-05-01T10:00:00Z",
		MessageForRecipient: "rent",
	}, raw)
}

func TestResolvePaymentSource_Unknown(t *testing.T) {
	_, err := ResolvePaymentSource("csv", nil, nil)
	require.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestValidatePayment_MissingField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RawPayment)
		field  string
	}{
		{"no accountFrom", func(r *domain.RawPayment) { r.AccountFrom = nil }, "accountFrom"},
		{"empty accountTo", func(r *domain.RawPayment) { r.AccountTo = "" }, "accountTo"},
		{"no bankCode", func(r *domain.RawPayment) { r.BankCode = nil }, "bankCode"},
		{"zero amount", func(r *domain.RawPayment) { r.Amount = 0.0 }, "amount"},
		{"no amount", func(r *domain.RawPayment) { r.Amount = nil }, "amount"},
		{"no date", func(r *domain.RawPayment) { r.Date = "" }, "date"},
		{"no currency", func(r *domain.RawPayment) { r.Currency = nil }, "currency"},
		{"first in table order wins", func(r *domain.RawPayment) { r.Currency = nil; r.BankCode = "" }, "bankCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			order, err := ValidatePayment(raw)
			require.Nil(t, order)
			require.True(t, errors.Is(err, ErrMissingField))

			var mfe *MissingFieldError
			require.True(t, errors.As(err, &mfe))
			require.Equal(t, tt.field, mfe.Field)
			require.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidatePayment_InvalidAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount any
	}{
		{"zero string", "0"},
		{"negative", -5.0},
		{"negative string", "-0.01"},
		{"not a number", "abc"},
		{"blank", "   "},
		{"infinity", "Infinity"},
		{"inf number", math.Inf(1)},
		{"nan string", "NaN"},
		{"unsupported type", []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw.Amount = tt.amount

			order, err := ValidatePayment(raw)
			require.Nil(t, order)
			require.True(t, errors.Is(err, ErrInvalidAmount), "got %v", err)
		})
	}
}

func TestValidatePayment_AmountAlwaysPositive(t *testing.T) {
	for _, amount := range []any{"0.01", " 42 ", 1.0, 1e6, 7, int64(3), "1e3"} {
		raw := validRaw()
		raw.Amount = amount

		order, err := ValidatePayment(raw)
		require.NoError(t, err, "amount %v", amount)
		require.Greater(t, order.Amount, 0.0)
		require.False(t, math.IsInf(order.Amount, 0))
	}
}

func TestValidatePayment_Coercion(t *testing.T) {
	raw := domain.RawPayment{
		AccountFrom:         2400123456.0,
		AccountTo:           1234567890,
		BankCode:            "0100",
		Amount:              250.75,
		Date:                "2024-05-01",
		Currency:            "EUR",
		MessageForRecipient: 12.0,
	}

	order, err := ValidatePayment(raw)
	require.NoError(t, err)
	require.Equal(t, "2400123456", order.AccountFrom)
	require.Equal(t, "1234567890", order.AccountTo)
	require.Equal(t, 250.75, order.Amount)
	require.NotNil(t, order.MessageForRecipient)
	require.Equal(t, "12", *order.MessageForRecipient)
}

func TestValidatePayment_MessageOptional(t *testing.T) {
	for _, msg := range []any{nil, ""} {
		raw := validRaw()
		raw.MessageForRecipient = msg

		order, err := ValidatePayment(raw)
		require.NoError(t, err)
		require.Nil(t, order.MessageForRecipient, "message %#v", msg)
	}

	raw := validRaw()
	raw.MessageForRecipient = "invoice 2024/05"
	order, err := ValidatePayment(raw)
	require.NoError(t, err)
	require.Equal(t, "invoice 2024/05", *order.MessageForRecipient)
}
