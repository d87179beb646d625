package payment

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// InitResponse is the provider-neutral view of an init_payment reply.
type InitResponse struct {
	OK               bool
	PaymentID        string
	RedirectURL      string
	ErrorCode        string
	ErrorDescription string
}

// ResponseParser decodes a provider's raw init reply. Kept as an interface so
// a different provider's wire format can be swapped in without touching the
// webhook or ledger code.
type ResponseParser interface {
	ParseInit(raw []byte) (*InitResponse, error)
}

// payboxInitXML mirrors the PayBox init_payment.php XML body.
type payboxInitXML struct {
	XMLName          xml.Name `xml:"response"`
	Status           string   `xml:"pg_status"`
	PaymentID        string   `xml:"pg_payment_id"`
	RedirectURL      string   `xml:"pg_redirect_url"`
	ErrorCode        string   `xml:"pg_error_code"`
	ErrorDescription string   `xml:"pg_error_description"`
}

// PayboxXMLParser parses the PayBox/FreedomPay XML response format.
type PayboxXMLParser struct{}

var _ ResponseParser = (*PayboxXMLParser)(nil)

func (PayboxXMLParser) ParseInit(raw []byte) (*InitResponse, error) {
	var body payboxInitXML
	if err := xml.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("parse init response: %w", err)
	}
	out := &InitResponse{
		PaymentID:        body.PaymentID,
		RedirectURL:      body.RedirectURL,
		ErrorCode:        body.ErrorCode,
		ErrorDescription: body.ErrorDescription,
	}
	switch strings.ToLower(body.Status) {
	case "ok", "success":
		out.OK = true
	}
	return out, nil
}
