package fio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dvloznov/fio-node/internal/domain"
)

// ExtractBalance flattens the info block of a periods response. Fields are
// copied as reported; numbers where text is expected are rendered as text and
// fields of an unexpected type are left empty.
func ExtractBalance(body []byte) (*domain.Balance, error) {
	resp, err := decodeStatement(body)
	if err != nil {
		return nil, err
	}
	if isAbsent(resp.AccountStatement.Info) {
		return nil, accessFault("accountStatement.info")
	}

	var info map[string]any
	if err := json.Unmarshal(resp.AccountStatement.Info, &info); err != nil {
		return nil, fmt.Errorf("%w: decode info: %v", ErrAccessFault, err)
	}

	return &domain.Balance{
		Balance:   infoNumber(info["closingBalance"]),
		Currency:  infoString(info["currency"]),
		AccountID: infoString(info["accountId"]),
		BankID:    infoString(info["bankId"]),
		IBAN:      infoString(info["iban"]),
		BIC:       infoString(info["bic"]),
		DateFrom:  infoString(info["dateFrom"]),
		Date:      infoString(info["dateTo"]),
	}, nil
}

func infoString(v any) string {
	switch v.(type) {
	case string, float64, bool:
		return toString(v)
	}
	return ""
}

func infoNumber(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err == nil {
			return f
		}
	}
	return 0
}
