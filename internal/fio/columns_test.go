package fio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvloznov/fio-node/internal/domain"
)

const statementJSON = `{
  "accountStatement": {
    "info": {"accountId": "2400123456", "currency": "CZK"},
    "transactionList": {
      "transaction": [
        {
          "column22": {"value": 26962199069, "name": "ID pohybu", "id": 22},
          "column0": {"value": "2024-05-01+0200", "name": "Datum", "id": 0},
          "column1": {"value": -1500.5, "name": "Objem", "id": 1},
          "column14": {"value": "CZK", "name": "Měna", "id": 14},
          "column2": {"value": "123456789", "name": "Protiúčet", "id": 2},
          "column5": null,
          "column99": {"value": "secret", "name": "Unknown", "id": 99},
          "column21": {"value": "metadata", "name": "Not surfaced", "id": 21}
        },
        {
          "column99": {"value": "only unknown", "name": "Unknown", "id": 99}
        },
        {
          "column22": {"value": 26962199070, "name": "ID pohybu", "id": 22},
          "column16": {"value": "Thanks", "name": "Zpráva pro příjemce", "id": 16}
        }
      ]
    }
  }
}`

func TestMapTransactions(t *testing.T) {
	txs, err := MapTransactions([]byte(statementJSON))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	require.Equal(t, domain.Transaction{
		"transactionId":        float64(26962199069),
		"transactionDate":      "2024-05-01+0200",
		"amount":               -1500.5,
		"currency":             "CZK",
		"counterAccountNumber": "123456789",
	}, txs[0])
	require.Empty(t, txs[1])
	require.Equal(t, float64(26962199070), txs[2]["transactionId"])
	require.Equal(t, "Thanks", txs[2]["messageForRecipient"])
}

func TestMapTransactions_OnlyKnownNames(t *testing.T) {
	txs, err := MapTransactions([]byte(statementJSON))
	require.NoError(t, err)

	known := make(map[string]bool)
	for _, c := range Columns() {
		known[c.Name] = true
	}
	for i, tx := range txs {
		for name := range tx {
			require.True(t, known[name], "transaction %d has unmapped field %q", i, name)
		}
	}
}

func TestMapTransactions_IgnoresMalformedColumns(t *testing.T) {
	body := `{"accountStatement":{"info":"n/a","transactionList":{"transaction":[
		{
			"column22": {"value": 1, "name": "ID pohybu", "id": 22},
			"column99": "meta",
			"column98": [1, 2],
			"column1": 42,
			"column14": {"value": "CZK"}
		}
	]}}}`

	txs, err := MapTransactions([]byte(body))
	require.NoError(t, err)
	require.Equal(t, []domain.Transaction{{"transactionId": 1.0, "currency": "CZK"}}, txs)
}

func TestMapTransactions_Empty(t *testing.T) {
	txs, err := MapTransactions([]byte(`{"accountStatement":{"transactionList":{"transaction":[]}}}`))
	require.NoError(t, err)
	require.NotNil(t, txs)
	require.Empty(t, txs)
}

func TestMapTransactions_AccessFault(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `<html>`},
		{"no statement", `{}`},
		{"no transaction list", `{"accountStatement":{"info":{}}}`},
		{"null transaction list", `{"accountStatement":{"transactionList":null}}`},
		{"no transaction array", `{"accountStatement":{"transactionList":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapTransactions([]byte(tt.body))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrAccessFault), "got %v", err)
		})
	}
}

func TestMapTransaction_PreservesValueTypes(t *testing.T) {
	tx := MapTransaction(map[string]*Column{
		"column1":  {Value: 42.0},
		"column5":  {Value: "0308"},
		"column27": {Value: nil},
	})
	require.Equal(t, domain.Transaction{"amount": 42.0, "variableSymbol": "0308"}, tx)
}

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, 20)
	for i := 1; i < len(cols); i++ {
		require.Less(t, cols[i-1].Code, cols[i].Code)
	}

	name, ok := ColumnName("column22")
	require.True(t, ok)
	require.Equal(t, "transactionId", name)

	_, ok = ColumnName("column21")
	require.False(t, ok)
}

func TestFieldNames(t *testing.T) {
	names := FieldNames()
	require.Len(t, names, 20)
	require.Equal(t, "transactionId", names[0])
	require.Equal(t, "payerReference", names[len(names)-1])

	seen := map[string]bool{}
	for _, n := range names {
		require.False(t, seen[n], "duplicate field %q", n)
		seen[n] = true
	}
}
