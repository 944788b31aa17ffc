package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tax-intl/epaye-go/libs/audit"
	"github.com/tax-intl/epaye-go/libs/clients/auth"
	errorutils "github.com/tax-intl/epaye-go/libs/errors"
	"github.com/tax-intl/epaye-go/libs/logging"
	"github.com/tax-intl/epaye-go/libs/useragent"
)

// emitRequestEvent publishes a filing request event once a request has passed
// validation. Audit transport failures are logged, they never gate the response.
func (s *Service) emitRequestEvent(ctx context.Context, r *http.Request, authority *auth.Authority, submissionID string, correlationID string, instanceID string, payload interface{}) {
	event := &audit.RequestEvent{
		SubmissionID:  submissionID,
		CorrelationID: correlationID,
		InstanceID:    instanceID,
		EmpRef:        authority.EmpRef(),
		Platform:      useragent.ParsePlatform(r.UserAgent()),
		ReceivedAt:    s.now().UTC().Format(time.RFC3339),
		Payload:       marshalPayload(payload),
	}
	if err := s.audit.EmitRequestEvent(ctx, event); err != nil {
		logEmitFailure(ctx, "submission.emitRequestEvent", submissionID, err,
			"failed to emit the filing request event")
	}
}

// emitResponseEvent publishes a filing response event labelled with the
// rendered status code
func (s *Service) emitResponseEvent(ctx context.Context, r *http.Request, statusLabel string, submissionID string, correlationID string, payload string) {
	event := &audit.ResponseEvent{
		SubmissionID:  submissionID,
		CorrelationID: correlationID,
		Platform:      useragent.ParsePlatform(r.UserAgent()),
		ReceivedAt:    s.now().UTC().Format(time.RFC3339),
		Payload:       payload,
	}
	if err := s.audit.EmitResponseEvent(ctx, statusLabel, event); err != nil {
		logEmitFailure(ctx, "submission.emitResponseEvent", submissionID, err,
			"failed to emit the filing response event")
	}
}

// logEmitFailure records a dropped audit event, carrying over the machine
// code when the error data is errorutils.Coded
func logEmitFailure(ctx context.Context, prefix string, submissionID string, err error, msg string) {
	entry := logging.Logger(ctx, prefix).Error().Err(err).Str("submissionId", submissionID)

	var eb *errorutils.ErrorBundle
	if errors.As(err, &eb) {
		if coded, ok := eb.Data().(errorutils.Coded); ok {
			code, retriable := coded.Code()
			entry = entry.Str("errCode", code).Bool("retriable", retriable)
		}
	}

	entry.Msg(msg)
}

// marshalPayload flattens an audit payload to its JSON text
func marshalPayload(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
