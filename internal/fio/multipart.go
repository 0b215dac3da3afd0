package fio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/fio-node/internal/domain"
)

const (
	// DomesticPaymentType is the only payment type code the node submits.
	DomesticPaymentType = "431001"

	boundaryPrefix  = "----formdata-fio-"
	paymentFilename = "payment.xml"
	crlf            = "\r\n"
)

// paymentXML is filled verbatim. Values are not XML-escaped.
const paymentXML = `<?xml version="1.0" encoding="UTF-8"?>
<Import xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="http://www.fio.cz/schema/importIB.xsd">
    <Orders>
        <DomesticTransaction>
            <accountFrom>%s</accountFrom>
            <currency>%s</currency>
            <amount>%s</amount>
            <accountTo>%s</accountTo>
            <bankCode>%s</bankCode>
            <ks></ks>
            <vs></vs>
            <ss></ss>
            <date>%s</date>
            <messageForRecipient>%s</messageForRecipient>
            <comment></comment>
            <paymentType>%s</paymentType>
        </DomesticTransaction>
    </Orders>
</Import>`

// Payload is a multipart/form-data request body ready to post to /import/.
type Payload struct {
	Body     []byte
	Boundary string
}

// ContentType is the header value matching the payload's boundary.
func (p *Payload) ContentType() string {
	return "multipart/form-data; boundary=" + p.Boundary
}

// BuildPaymentXML renders the import document for a single domestic transaction.
func BuildPaymentXML(order *domain.PaymentOrder) string {
	message := ""
	if order.MessageForRecipient != nil {
		message = *order.MessageForRecipient
	}
	return fmt.Sprintf(paymentXML,
		order.AccountFrom,
		order.Currency,
		FormatAmount(order.Amount),
		order.AccountTo,
		order.BankCode,
		order.Date,
		message,
		DomesticPaymentType,
	)
}

// FormatAmount renders an amount the shortest way that round-trips,
// e.g. 100 -> "100", 99.9 -> "99.9".
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// EncodePayment wraps the order's import document into a multipart body with
// the parts type, token and file, in that order.
func EncodePayment(order *domain.PaymentOrder, token string) (*Payload, error) {
	if order == nil {
		return nil, errors.New("EncodePayment: nil order")
	}

	boundary := newBoundary()
	delimiter := "--" + boundary
	lines := []string{
		delimiter,
		`Content-Disposition: form-data; name="type"`,
		"",
		"xml",
		delimiter,
		`Content-Disposition: form-data; name="token"`,
		"",
		token,
		delimiter,
		fmt.Sprintf(`Content-Disposition: form-data; name="file"; filename="%s"`, paymentFilename),
		"Content-Type: text/xml",
		"",
		BuildPaymentXML(order),
		delimiter + "--",
	}

	return &Payload{
		Body:     []byte(strings.Join(lines, crlf)),
		Boundary: boundary,
	}, nil
}

func newBoundary() string {
	return boundaryPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
