package fio

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dvloznov/fio-node/internal/domain"
)

// The import answer is a small flat result block, so each field is pulled out
// by its own tag pattern instead of decoding the whole document.
var (
	errorCodeTag     = tagPattern("errorCode")
	idInstructionTag = tagPattern("idInstruction")
	statusTag        = tagPattern("status")
	sumCreditTag     = tagPattern("sumCredit")
	sumDebetTag      = tagPattern("sumDebet")
	messageTag       = tagPattern("message")

	// leading number of a value such as "1500.00 CZK"
	numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

func tagPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `[^>]*>([^<]*)</` + tag + `>`)
}

// ParsePaymentResponse extracts the status fields of an import answer.
// Absent tags give "" and unparsable numbers give 0; it never fails.
func ParsePaymentResponse(xml string) domain.PaymentResult {
	return domain.PaymentResult{
		ErrorCode:     extractText(xml, errorCodeTag),
		IDInstruction: extractText(xml, idInstructionTag),
		Status:        extractText(xml, statusTag),
		SumCredit:     extractNumber(xml, sumCreditTag),
		SumDebet:      extractNumber(xml, sumDebetTag),
		Messages:      extractText(xml, messageTag),
	}
}

func extractText(xml string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(xml)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func extractNumber(xml string, re *regexp.Regexp) float64 {
	text := extractText(xml, re)
	if text == "" {
		return 0
	}
	f, err := strconv.ParseFloat(numberPrefix.FindString(text), 64)
	if err != nil {
		return 0
	}
	return f
}
