package submission

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tax-intl/epaye-go/libs/clients/chris"
)

// SubmitResponse is the rendered body of a dispatched filing
type SubmitResponse struct {
	SubmissionID      string                  `json:"submissionId"`
	HMRCMarkGenerated bool                    `json:"hmrcMarkGenerated"`
	CorrelationID     string                  `json:"correlationId"`
	GatewayTimestamp  string                  `json:"gatewayTimestamp"`
	Status            chris.Status            `json:"status"`
	ResponseEndPoint  *chris.ResponseEndPoint `json:"responseEndPoint,omitempty"`
	Error             *chris.GovTalkError     `json:"error,omitempty"`
}

// RenderOutcome maps an upstream outcome onto the response body and status
// code for the caller, emitting exactly one filing response event labelled
// with the rendered status code. Accepted filings respond 202 with the poll
// endpoint, every other status responds 200. Error bearing statuses missing
// an upstream error object carry a fallback error text.
func (s *Service) RenderOutcome(ctx context.Context, r *http.Request, submissionID string, markGenerated bool, outcome *chris.Outcome) (*SubmitResponse, int) {
	body := &SubmitResponse{
		SubmissionID:      submissionID,
		HMRCMarkGenerated: markGenerated,
		CorrelationID:     outcome.CorrelationID,
		GatewayTimestamp:  s.gatewayTimestamp(outcome.GatewayTimestamp),
		Status:            outcome.Status,
	}

	code := http.StatusOK
	switch outcome.Status {
	case chris.StatusAccepted:
		code = http.StatusAccepted
		body.ResponseEndPoint = outcome.ResponseEndPoint
	case chris.StatusDepartmentalError:
		body.Error = outcome.Error
		if body.Error == nil {
			body.Error = &chris.GovTalkError{Text: "departmental error"}
		}
	case chris.StatusFatalError:
		body.Error = outcome.Error
		if body.Error == nil {
			body.Error = &chris.GovTalkError{Text: "fatal"}
		}
	}

	s.emitResponseEvent(ctx, r, strconv.Itoa(code), submissionID, outcome.CorrelationID, s.convertRawBody(outcome.RawBody))

	return body, code
}

// gatewayTimestamp prefers the upstream supplied value, falling back to the clock
func (s *Service) gatewayTimestamp(upstream string) string {
	if trimmed := strings.TrimSpace(upstream); trimmed != "" {
		return trimmed
	}
	return s.now().UTC().Format(time.RFC3339)
}

// convertRawBody converts the upstream body to JSON for the audit trail, a
// body that will not convert is carried raw alongside the conversion error
func (s *Service) convertRawBody(raw string) string {
	conversion := s.converter.Convert(raw)
	if conversion.OK {
		return marshalPayload(conversion.JSON)
	}
	return marshalPayload(map[string]interface{}{
		"error": conversion.Err,
		"raw":   raw,
	})
}
