package fio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dvloznov/fio-node/internal/domain"
)

// columnTable maps the bank's numeric column codes to transaction field names,
// in statement order. Columns outside this table are never surfaced.
var columnTable = []ColumnMapping{
	{Code: "column22", Name: "transactionId"},
	{Code: "column0", Name: "transactionDate"},
	{Code: "column1", Name: "amount"},
	{Code: "column14", Name: "currency"},
	{Code: "column2", Name: "counterAccountNumber"},
	{Code: "column10", Name: "counterAccountName"},
	{Code: "column3", Name: "counterBankCode"},
	{Code: "column12", Name: "counterBankName"},
	{Code: "column4", Name: "constantSymbol"},
	{Code: "column5", Name: "variableSymbol"},
	{Code: "column6", Name: "specificSymbol"},
	{Code: "column7", Name: "userIdentification"},
	{Code: "column16", Name: "messageForRecipient"},
	{Code: "column8", Name: "transactionType"},
	{Code: "column9", Name: "executedBy"},
	{Code: "column18", Name: "specification"},
	{Code: "column25", Name: "comment"},
	{Code: "column26", Name: "counterAccountBic"},
	{Code: "column17", Name: "instructionId"},
	{Code: "column27", Name: "payerReference"},
}

var columnNames = func() map[string]string {
	m := make(map[string]string, len(columnTable))
	for _, c := range columnTable {
		m[c.Code] = c.Name
	}
	return m
}()

// Column is a single cell of a raw statement transaction.
type Column struct {
	Value any    `json:"value"`
	Name  string `json:"name"` // Czech description
	ID    int    `json:"id"`
}

// ColumnMapping is one row of the column table.
type ColumnMapping struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// statementResponse keeps the two sections raw so that each extractor only
// depends on the shape of the section it reads.
type statementResponse struct {
	AccountStatement *struct {
		Info            json.RawMessage `json:"info"`
		TransactionList json.RawMessage `json:"transactionList"`
	} `json:"accountStatement"`
}

type transactionList struct {
	Transaction []map[string]json.RawMessage `json:"transaction"`
}

func decodeStatement(body []byte) (*statementResponse, error) {
	var resp statementResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode statement: %v", ErrAccessFault, err)
	}
	if resp.AccountStatement == nil {
		return nil, accessFault("accountStatement")
	}
	return &resp, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// ColumnName returns the field name for a column code.
func ColumnName(code string) (string, bool) {
	name, ok := columnNames[code]
	return name, ok
}

// FieldNames returns the transaction field names in statement order.
func FieldNames() []string {
	out := make([]string, len(columnTable))
	for i, c := range columnTable {
		out[i] = c.Name
	}
	return out
}

// Columns returns the column table sorted by code.
func Columns() []ColumnMapping {
	out := make([]ColumnMapping, len(columnTable))
	copy(out, columnTable)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

// MapTransactions decodes a periods response and maps every raw transaction
// into a named-field record, preserving order.
func MapTransactions(body []byte) ([]domain.Transaction, error) {
	resp, err := decodeStatement(body)
	if err != nil {
		return nil, err
	}
	if isAbsent(resp.AccountStatement.TransactionList) {
		return nil, accessFault("accountStatement.transactionList")
	}
	var list transactionList
	if err := json.Unmarshal(resp.AccountStatement.TransactionList, &list); err != nil {
		return nil, fmt.Errorf("%w: decode transactionList: %v", ErrAccessFault, err)
	}
	if list.Transaction == nil {
		return nil, accessFault("accountStatement.transactionList.transaction")
	}

	result := make([]domain.Transaction, 0, len(list.Transaction))
	for _, raw := range list.Transaction {
		result = append(result, MapTransaction(knownColumns(raw)))
	}
	return result, nil
}

// knownColumns decodes only the columns of the table. Unknown keys and
// known keys that are not a column object are dropped.
func knownColumns(raw map[string]json.RawMessage) map[string]*Column {
	cols := make(map[string]*Column, len(columnTable))
	for code, value := range raw {
		if _, ok := ColumnName(code); !ok {
			continue
		}
		var col *Column
		if err := json.Unmarshal(value, &col); err != nil {
			continue
		}
		cols[code] = col
	}
	return cols
}

// MapTransaction copies the value of every known column under its field name.
// Unknown columns and columns without a value are skipped; a transaction with
// no known columns yields an empty record.
func MapTransaction(raw map[string]*Column) domain.Transaction {
	tx := make(domain.Transaction, len(raw))
	for code, col := range raw {
		name, ok := ColumnName(code)
		if !ok || col == nil || col.Value == nil {
			continue
		}
		tx[name] = col.Value
	}
	return tx
}
