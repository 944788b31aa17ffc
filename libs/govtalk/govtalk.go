// Package govtalk constructs GovTalk submission envelopes for employer payment summary filings.
package govtalk

import (
	"crypto/sha1"
	"encoding/base32"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

const (
	// EnvelopeVersion is the GovTalk envelope version stamped on every message
	EnvelopeVersion = "2.0"
	// MessageClass is the message class for employer payment summary filings
	MessageClass = "HMRC-PAYE-RTI-EPS"

	qualifierRequest  = "request"
	functionSubmit    = "submit"
	transformationXML = "XML"

	messageNamespace    = "http://www.govtalk.gov.uk/CM/envelope"
	irEnvelopeNamespace = "http://www.govtalk.gov.uk/taxation/PAYE/RTI/EmployerPaymentSummary/20-21/1"
)

// Flags toggle optional envelope parts
type Flags struct {
	// TestInLive marks the message for gateway test handling so it is not processed as a live filing
	TestInLive bool
}

// Filing carries the employer references and period of a single submission
type Filing struct {
	UTR                     string
	AccountsOfficeReference string
	TaxOfficeNumber         string
	TaxOfficeReference      string
	MonthYear               string
	Inactivity              bool
	InformationCorrect      bool
}

// Envelope is a fully constructed GovTalk message ready for dispatch
type Envelope struct {
	CorrelationID   string `json:"correlationId"`
	Class           string `json:"class"`
	Payload         string `json:"payload"`
	IRMark          string `json:"irMark"`
	IRMarkGenerated bool   `json:"irMarkGenerated"`
}

// Builder constructs submission envelopes
type Builder interface {
	Build(filing Filing, correlationID string, flags Flags) (*Envelope, error)
}

// NewCorrelationID returns a fresh correlation id, a uuid v4 with the
// separators removed and hex digits folded to uppercase
func NewCorrelationID() string {
	return strings.ToUpper(hex.EncodeToString(uuid.NewV4().Bytes()))
}

// MessageBuilder implements Builder for the employer payment summary class
type MessageBuilder struct {
	senderID string
	product  string
	version  string
}

// NewBuilder returns a MessageBuilder sending as senderID, routed as product/version
func NewBuilder(senderID string, product string, version string) *MessageBuilder {
	return &MessageBuilder{
		senderID: senderID,
		product:  product,
		version:  version,
	}
}

type govTalkMessage struct {
	XMLName         xml.Name       `xml:"GovTalkMessage"`
	Namespace       string         `xml:"xmlns,attr"`
	EnvelopeVersion string         `xml:"EnvelopeVersion"`
	Header          messageHeader  `xml:"Header"`
	GovTalkDetails  govTalkDetails `xml:"GovTalkDetails"`
	Body            messageBody    `xml:"Body"`
}

type messageHeader struct {
	MessageDetails messageDetails `xml:"MessageDetails"`
	SenderDetails  senderDetails  `xml:"SenderDetails"`
}

type messageDetails struct {
	Class          string `xml:"Class"`
	Qualifier      string `xml:"Qualifier"`
	Function       string `xml:"Function"`
	CorrelationID  string `xml:"CorrelationID"`
	Transformation string `xml:"Transformation"`
	GatewayTest    string `xml:"GatewayTest,omitempty"`
}

type senderDetails struct {
	IDAuthentication idAuthentication `xml:"IDAuthentication"`
}

type idAuthentication struct {
	SenderID       string         `xml:"SenderID"`
	Authentication authentication `xml:"Authentication"`
}

type authentication struct {
	Method string `xml:"Method"`
}

type govTalkDetails struct {
	Keys           keys           `xml:"Keys"`
	ChannelRouting channelRouting `xml:"ChannelRouting"`
}

type channelRouting struct {
	Channel channel `xml:"Channel"`
}

type channel struct {
	Product string `xml:"Product"`
	Version string `xml:"Version"`
}

type messageBody struct {
	Content string `xml:",innerxml"`
}

type irEnvelope struct {
	XMLName   xml.Name               `xml:"IRenvelope"`
	Namespace string                 `xml:"xmlns,attr"`
	IRheader  irHeader               `xml:"IRheader"`
	Summary   employerPaymentSummary `xml:"EmployerPaymentSummary"`
}

type irHeader struct {
	Keys            keys    `xml:"Keys"`
	PeriodEnd       string  `xml:"PeriodEnd"`
	DefaultCurrency string  `xml:"DefaultCurrency"`
	IRmark          *irMark `xml:"IRmark,omitempty"`
	Sender          string  `xml:"Sender"`
}

type irMark struct {
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

type keys struct {
	Key []key `xml:"Key"`
}

type key struct {
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

type employerPaymentSummary struct {
	EmpRefs            empRefs           `xml:"EmpRefs"`
	PeriodOfInactivity *inactivityPeriod `xml:"PeriodOfInactivity,omitempty"`
	RelatedTaxYear     string            `xml:"RelatedTaxYear"`
	Declaration        string            `xml:"Declaration,omitempty"`
}

type empRefs struct {
	OfficeNo string `xml:"OfficeNo"`
	PayeRef  string `xml:"PayeRef"`
	AORef    string `xml:"AORef"`
	UTR      string `xml:"UTR,omitempty"`
}

type inactivityPeriod struct {
	From string `xml:"From"`
	To   string `xml:"To"`
}

// Build constructs the envelope for filing under the given correlation id.
// The same filing, correlation id and flags always produce an identical envelope.
func (b *MessageBuilder) Build(filing Filing, correlationID string, flags Flags) (*Envelope, error) {
	if correlationID == "" {
		return nil, errors.New("correlation id is required to build an envelope")
	}
	if filing.TaxOfficeNumber == "" || filing.TaxOfficeReference == "" {
		return nil, errors.New("employer references are required to build an envelope")
	}

	body := irEnvelope{
		Namespace: irEnvelopeNamespace,
		IRheader: irHeader{
			Keys: keys{Key: []key{
				{Type: "TaxOfficeNumber", Value: filing.TaxOfficeNumber},
				{Type: "TaxOfficeReference", Value: filing.TaxOfficeReference},
			}},
			PeriodEnd:       periodEnd(filing.MonthYear),
			DefaultCurrency: "GBP",
			Sender:          "Employer",
		},
		Summary: employerPaymentSummary{
			EmpRefs: empRefs{
				OfficeNo: filing.TaxOfficeNumber,
				PayeRef:  filing.TaxOfficeReference,
				AORef:    filing.AccountsOfficeReference,
				UTR:      filing.UTR,
			},
			RelatedTaxYear: relatedTaxYear(filing.MonthYear),
		},
	}
	if filing.Inactivity {
		from, to := inactivityWindow(filing.MonthYear)
		body.Summary.PeriodOfInactivity = &inactivityPeriod{From: from, To: to}
	}
	if filing.InformationCorrect {
		body.Summary.Declaration = "yes"
	}

	unmarked, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize ir envelope: %w", err)
	}

	mark := IRMark(unmarked)
	body.IRheader.IRmark = &irMark{Type: "generic", Value: mark}

	marked, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize marked ir envelope: %w", err)
	}

	message := govTalkMessage{
		Namespace:       messageNamespace,
		EnvelopeVersion: EnvelopeVersion,
		Header: messageHeader{
			MessageDetails: messageDetails{
				Class:          MessageClass,
				Qualifier:      qualifierRequest,
				Function:       functionSubmit,
				CorrelationID:  correlationID,
				Transformation: transformationXML,
			},
			SenderDetails: senderDetails{
				IDAuthentication: idAuthentication{
					SenderID:       b.senderID,
					Authentication: authentication{Method: "clear"},
				},
			},
		},
		GovTalkDetails: govTalkDetails{
			Keys: keys{Key: []key{
				{Type: "TaxOfficeNumber", Value: filing.TaxOfficeNumber},
				{Type: "TaxOfficeReference", Value: filing.TaxOfficeReference},
			}},
			ChannelRouting: channelRouting{
				Channel: channel{Product: b.product, Version: b.version},
			},
		},
		Body: messageBody{Content: string(marked)},
	}
	if flags.TestInLive {
		message.Header.MessageDetails.GatewayTest = "1"
	}

	payload, err := xml.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize govtalk message: %w", err)
	}

	return &Envelope{
		CorrelationID:   correlationID,
		Class:           MessageClass,
		Payload:         xml.Header + string(payload),
		IRMark:          mark,
		IRMarkGenerated: len(mark) > 0,
	}, nil
}

// IRMark computes the integrity mark over an envelope body, a SHA-1 digest of the
// normalized body encoded as base32 without padding
func IRMark(body []byte) string {
	digest := sha1.Sum(normalizeBody(body))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(digest[:])
}

// normalizeBody strips carriage returns and surrounding whitespace so the mark
// is stable across serializations
func normalizeBody(body []byte) []byte {
	normalized := strings.ReplaceAll(string(body), "\r\n", "\n")
	return []byte(strings.TrimSpace(normalized))
}

// periodEnd resolves a YYYY-MM tax period to its closing date, the fifth of the month
func periodEnd(monthYear string) string {
	return monthYear + "-05"
}

// inactivityWindow spans the tax month, the sixth of the prior month through the fifth
func inactivityWindow(monthYear string) (string, string) {
	t, err := time.Parse("2006-01", monthYear)
	if err != nil {
		return "", ""
	}
	to := time.Date(t.Year(), t.Month(), 5, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, -1, 1)
	return from.Format("2006-01-02"), to.Format("2006-01-02")
}

// relatedTaxYear resolves the tax year a period belongs to, years rolling over on the sixth of April
func relatedTaxYear(monthYear string) string {
	t, err := time.Parse("2006-01", monthYear)
	if err != nil {
		return ""
	}
	start := t.Year()
	if t.Month() <= time.April {
		start--
	}
	return fmt.Sprintf("%02d-%02d", start%100, (start+1)%100)
}
