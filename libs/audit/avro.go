package audit

import (
	"encoding/json"
	"fmt"

	"github.com/linkedin/goavro"

	errorutils "github.com/tax-intl/epaye-go/libs/errors"
)

const filingRequestEventSchema = `{
  "namespace": "tax.epaye",
  "type": "record",
  "name": "filingRequest",
  "doc": "This message is sent when the gateway accepts a filing request for processing",
  "fields": [
    { "name": "submissionId", "type": "string" },
    { "name": "correlationId", "type": "string", "default": "" },
    { "name": "instanceId", "type": "string", "default": "" },
    { "name": "empRef", "type": "string", "default": "" },
    { "name": "platform", "type": "string", "default": "" },
    { "name": "receivedAt", "type": "string" },
    { "name": "payload", "type": "string", "default": "{}" }
  ]
}`

const filingResponseEventSchema = `{
  "namespace": "tax.epaye",
  "type": "record",
  "name": "filingResponse",
  "doc": "This message is sent when the upstream submission service responds to a filing",
  "fields": [
    { "name": "submissionId", "type": "string" },
    { "name": "correlationId", "type": "string", "default": "" },
    { "name": "statusLabel", "type": "string" },
    { "name": "platform", "type": "string", "default": "" },
    { "name": "receivedAt", "type": "string" },
    { "name": "payload", "type": "string", "default": "{}" }
  ]
}`

// RequestEvent captures an inbound filing request after validation
type RequestEvent struct {
	SubmissionID  string `json:"submissionId"`
	CorrelationID string `json:"correlationId"`
	InstanceID    string `json:"instanceId"`
	EmpRef        string `json:"empRef"`
	Platform      string `json:"platform"`
	ReceivedAt    string `json:"receivedAt"`
	Payload       string `json:"payload"`
}

// CodecEncode - encode using the filing request avro codec
func (e *RequestEvent) CodecEncode(codec *goavro.Codec) ([]byte, error) {
	return codec.BinaryFromNative(nil, map[string]interface{}{
		"submissionId":  e.SubmissionID,
		"correlationId": e.CorrelationID,
		"instanceId":    e.InstanceID,
		"empRef":        e.EmpRef,
		"platform":      e.Platform,
		"receivedAt":    e.ReceivedAt,
		"payload":       e.Payload,
	})
}

// CodecDecode - decode using the filing request avro codec
func (e *RequestEvent) CodecDecode(codec *goavro.Codec, binary []byte) error {
	native, _, err := codec.NativeFromBinary(binary)
	if err != nil {
		return errorutils.Wrap(err, "error decoding filing request event")
	}

	v, err := json.Marshal(native)
	if err != nil {
		return fmt.Errorf("unable to marshal avro payload: %w", err)
	}

	err = json.Unmarshal(v, e)
	if err != nil {
		return fmt.Errorf("unable to decode avro payload to RequestEvent: %w", err)
	}

	return nil
}

// ResponseEvent captures the upstream response to a filing, labeled with the
// status code the gateway rendered for it
type ResponseEvent struct {
	SubmissionID  string `json:"submissionId"`
	CorrelationID string `json:"correlationId"`
	StatusLabel   string `json:"statusLabel"`
	Platform      string `json:"platform"`
	ReceivedAt    string `json:"receivedAt"`
	Payload       string `json:"payload"`
}

// CodecEncode - encode using the filing response avro codec
func (e *ResponseEvent) CodecEncode(codec *goavro.Codec) ([]byte, error) {
	return codec.BinaryFromNative(nil, map[string]interface{}{
		"submissionId":  e.SubmissionID,
		"correlationId": e.CorrelationID,
		"statusLabel":   e.StatusLabel,
		"platform":      e.Platform,
		"receivedAt":    e.ReceivedAt,
		"payload":       e.Payload,
	})
}

// CodecDecode - decode using the filing response avro codec
func (e *ResponseEvent) CodecDecode(codec *goavro.Codec, binary []byte) error {
	native, _, err := codec.NativeFromBinary(binary)
	if err != nil {
		return errorutils.Wrap(err, "error decoding filing response event")
	}

	v, err := json.Marshal(native)
	if err != nil {
		return fmt.Errorf("unable to marshal avro payload: %w", err)
	}

	err = json.Unmarshal(v, e)
	if err != nil {
		return fmt.Errorf("unable to decode avro payload to ResponseEvent: %w", err)
	}

	return nil
}
