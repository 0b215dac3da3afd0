package fio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvloznov/fio-node/internal/domain"
)

const importAnswer = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<responseImport xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="http://www.fio.cz/schema/responseImport.xsd">
  <result>
    <errorCode>0</errorCode>
    <idInstruction>105545843</idInstruction>
    <status>ok</status>
    <sums>
      <sum id="CZK">
        <sumCredit>0</sumCredit>
        <sumDebet> 1500.25 </sumDebet>
      </sum>
    </sums>
  </result>
  <ordersDetails>
    <detail id="1">
      <messages>
        <message status="ok" errorCode="0">OK</message>
      </messages>
    </detail>
  </ordersDetails>
</responseImport>`

func TestParsePaymentResponse(t *testing.T) {
	got := ParsePaymentResponse(importAnswer)
	require.Equal(t, domain.PaymentResult{
		ErrorCode:     "0",
		IDInstruction: "105545843",
		Status:        "ok",
		SumCredit:     0,
		SumDebet:      1500.25,
		Messages:      "OK",
	}, got)
}

func TestParsePaymentResponse_Tolerant(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want domain.PaymentResult
	}{
		{
			name: "no target tags",
			xml:  `<html><body>Service unavailable</body></html>`,
			want: domain.PaymentResult{},
		},
		{
			name: "empty input",
			xml:  "",
			want: domain.PaymentResult{},
		},
		{
			name: "case-insensitive tags and attributes",
			xml:  `<STATUS code="x">error</STATUS><ErrorCode>11</ErrorCode>`,
			want: domain.PaymentResult{Status: "error", ErrorCode: "11"},
		},
		{
			name: "first match wins",
			xml:  `<status>first</status><status>second</status>`,
			want: domain.PaymentResult{Status: "first"},
		},
		{
			name: "unparsable numbers",
			xml:  `<sumCredit>n/a</sumCredit><sumDebet></sumDebet>`,
			want: domain.PaymentResult{},
		},
		{
			name: "leading number",
			xml:  `<sumCredit>12.5 CZK</sumCredit>`,
			want: domain.PaymentResult{SumCredit: 12.5},
		},
		{
			name: "nested content is not text",
			xml:  `<status><inner>x</inner></status>`,
			want: domain.PaymentResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.Equal(t, tt.want, ParsePaymentResponse(tt.xml))
			})
		})
	}
}
