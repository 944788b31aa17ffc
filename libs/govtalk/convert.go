package govtalk

import (
	"strings"

	"github.com/clbanning/mxj/v2"
)

// ConversionResult is the outcome of converting an upstream body for auditing
type ConversionResult struct {
	OK   bool
	JSON map[string]interface{}
	Err  string
}

// Converter turns raw upstream bodies into structured audit payloads
type Converter interface {
	Convert(raw string) ConversionResult
}

// XMLConverter implements Converter over GovTalk XML bodies
type XMLConverter struct{}

// NewConverter returns an XMLConverter
func NewConverter() *XMLConverter {
	return &XMLConverter{}
}

// Convert parses raw as XML. A body that cannot be parsed produces OK false with
// a reason rather than an error, the caller degrades the audit payload.
func (c *XMLConverter) Convert(raw string) ConversionResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ConversionResult{OK: false, Err: "empty body"}
	}

	converted, err := mxj.NewMapXml([]byte(trimmed))
	if err != nil {
		return ConversionResult{OK: false, Err: err.Error()}
	}

	return ConversionResult{OK: true, JSON: map[string]interface{}(converted)}
}
