package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tax-intl/epaye-go/libs/audit"
	"github.com/tax-intl/epaye-go/libs/clients/chris"
)

func TestRenderOutcomeStatuses(t *testing.T) {
	cases := []struct {
		name     string
		outcome  *chris.Outcome
		code     int
		endpoint *chris.ResponseEndPoint
		err      *chris.GovTalkError
	}{
		{
			name: "accepted",
			outcome: &chris.Outcome{
				Status: chris.StatusAccepted,
				ResponseEndPoint: &chris.ResponseEndPoint{
					URL:          "https://chris.example.com/poll/sub-999",
					PollInterval: 10,
				},
			},
			code: http.StatusAccepted,
			endpoint: &chris.ResponseEndPoint{
				URL:          "https://chris.example.com/poll/sub-999",
				PollInterval: 10,
			},
		},
		{
			name:    "submitted",
			outcome: &chris.Outcome{Status: chris.StatusSubmitted},
			code:    http.StatusOK,
		},
		{
			name:    "submitted no receipt",
			outcome: &chris.Outcome{Status: chris.StatusSubmittedNoReceipt},
			code:    http.StatusOK,
		},
		{
			name: "departmental error",
			outcome: &chris.Outcome{
				Status: chris.StatusDepartmentalError,
				Error:  &chris.GovTalkError{Number: "3001", Type: "business", Text: "period closed"},
			},
			code: http.StatusOK,
			err:  &chris.GovTalkError{Number: "3001", Type: "business", Text: "period closed"},
		},
		{
			name:    "departmental error fallback",
			outcome: &chris.Outcome{Status: chris.StatusDepartmentalError},
			code:    http.StatusOK,
			err:     &chris.GovTalkError{Text: "departmental error"},
		},
		{
			name:    "fatal error fallback",
			outcome: &chris.Outcome{Status: chris.StatusFatalError},
			code:    http.StatusOK,
			err:     &chris.GovTalkError{Text: "fatal"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ts := newTestService(t, ctrl)

			var labels []string
			ts.audit.EXPECT().EmitResponseEvent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, statusLabel string, event *audit.ResponseEvent) error {
					labels = append(labels, statusLabel)
					return nil
				})

			tc.outcome.CorrelationID = "1E242F2B57F94BCD8DA9051B5F3004B2"
			tc.outcome.GatewayTimestamp = "2024-04-10T12:00:05Z"

			r := httptest.NewRequest("POST", "/sub-999/submit-to-chris", nil)
			body, code := ts.service.RenderOutcome(r.Context(), r, "sub-999", true, tc.outcome)

			assert.Equal(t, tc.code, code)
			assert.Equal(t, "sub-999", body.SubmissionID)
			assert.True(t, body.HMRCMarkGenerated)
			assert.Equal(t, "1E242F2B57F94BCD8DA9051B5F3004B2", body.CorrelationID)
			assert.Equal(t, "2024-04-10T12:00:05Z", body.GatewayTimestamp)
			assert.Equal(t, tc.outcome.Status, body.Status)
			assert.Equal(t, tc.endpoint, body.ResponseEndPoint)
			assert.Equal(t, tc.err, body.Error)

			require.Len(t, labels, 1, "exactly one response event per render")
			assert.Equal(t, strconv.Itoa(tc.code), labels[0])
		})
	}
}

func TestRenderOutcomeIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ts := newTestService(t, ctrl)

	ts.audit.EXPECT().EmitResponseEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	outcome := &chris.Outcome{
		Status:           chris.StatusSubmitted,
		RawBody:          "<GovTalkMessage><Qualifier>response</Qualifier></GovTalkMessage>",
		CorrelationID:    "1E242F2B57F94BCD8DA9051B5F3004B2",
		GatewayTimestamp: "2024-04-10T12:00:05Z",
	}

	r := httptest.NewRequest("POST", "/sub-999/submit-to-chris", nil)

	first, firstCode := ts.service.RenderOutcome(r.Context(), r, "sub-999", true, outcome)
	second, secondCode := ts.service.RenderOutcome(r.Context(), r, "sub-999", true, outcome)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, firstCode, secondCode)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestRenderOutcomeTimestampFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ts := newTestService(t, ctrl)

	ts.audit.EXPECT().EmitResponseEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	r := httptest.NewRequest("POST", "/sub-999/submit-to-chris", nil)

	body, _ := ts.service.RenderOutcome(r.Context(), r, "sub-999", true, &chris.Outcome{
		Status:           chris.StatusSubmitted,
		GatewayTimestamp: "   ",
	})
	assert.Equal(t, testNow.Format(time.RFC3339), body.GatewayTimestamp)

	body, _ = ts.service.RenderOutcome(r.Context(), r, "sub-999", true, &chris.Outcome{
		Status:           chris.StatusSubmitted,
		GatewayTimestamp: " 2024-04-10T12:00:05Z ",
	})
	assert.Equal(t, "2024-04-10T12:00:05Z", body.GatewayTimestamp)
}

func TestRenderOutcomeConversionDegraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ts := newTestService(t, ctrl)

	var responseEvent *audit.ResponseEvent
	ts.audit.EXPECT().EmitResponseEvent(gomock.Any(), gomock.Eq("200"), gomock.Any()).DoAndReturn(
		func(ctx context.Context, statusLabel string, event *audit.ResponseEvent) error {
			responseEvent = event
			return nil
		})

	r := httptest.NewRequest("POST", "/sub-999/submit-to-chris", nil)

	body, code := ts.service.RenderOutcome(r.Context(), r, "sub-999", true, &chris.Outcome{
		Status:        chris.StatusSubmitted,
		RawBody:       "<<< not xml >>>",
		CorrelationID: "1E242F2B57F94BCD8DA9051B5F3004B2",
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, chris.StatusSubmitted, body.Status)

	require.NotNil(t, responseEvent)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(responseEvent.Payload), &payload))
	assert.NotEmpty(t, payload["error"])
	assert.Equal(t, "<<< not xml >>>", payload["raw"])
}

func TestRenderOutcomeAuditFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ts := newTestService(t, ctrl)

	ts.audit.EXPECT().EmitResponseEvent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker unreachable"))

	r := httptest.NewRequest("POST", "/sub-999/submit-to-chris", nil)

	body, code := ts.service.RenderOutcome(r.Context(), r, "sub-999", true, &chris.Outcome{
		Status:           chris.StatusSubmitted,
		CorrelationID:    "1E242F2B57F94BCD8DA9051B5F3004B2",
		GatewayTimestamp: "2024-04-10T12:00:05Z",
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, chris.StatusSubmitted, body.Status)
}
