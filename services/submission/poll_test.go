package submission

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockaudit "github.com/tax-intl/epaye-go/libs/audit/mock"
	mockauth "github.com/tax-intl/epaye-go/libs/clients/auth/mock"
	"github.com/tax-intl/epaye-go/libs/clients/chris"
	mockchris "github.com/tax-intl/epaye-go/libs/clients/chris/mock"
	appctx "github.com/tax-intl/epaye-go/libs/context"
	"github.com/tax-intl/epaye-go/libs/govtalk"
)

func TestEvaluatePollDeterminism(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ts := newTestService(t, ctrl)

	dispatched := testNow
	pollURL := "https://chris.example.com/poll/sub-999?timestamp=" + dispatched.Format(time.RFC3339)

	cases := []struct {
		name   string
		at     time.Time
		status chris.Status
	}{
		{"at dispatch", dispatched, chris.StatusPending},
		{"just inside the window", dispatched.Add(14 * time.Second), chris.StatusPending},
		{"at the window", dispatched.Add(15 * time.Second), chris.StatusSubmitted},
		{"long after the window", dispatched.Add(10 * time.Minute), chris.StatusSubmitted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts.service.now = func() time.Time { return tc.at }

			resp, err := ts.service.EvaluatePoll(pollURL, "1E242F2B57F94BCD8DA9051B5F3004B2", "754")
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.Status)
			assert.Equal(t, "1E242F2B57F94BCD8DA9051B5F3004B2", resp.CorrelationID)
			if tc.status == chris.StatusPending {
				assert.Equal(t, pollURL, resp.PollURL)
			} else {
				assert.Empty(t, resp.PollURL)
			}
		})
	}
}

func TestEvaluatePollOffices(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ts := newTestService(t, ctrl)

	// thirty seconds past dispatch, comfortably mature
	ts.service.now = func() time.Time { return testNow.Add(30 * time.Second) }
	pollURL := "https://chris.example.com/poll/sub-999?timestamp=" + testNow.Format(time.RFC3339)

	cases := []struct {
		office string
		status chris.Status
		echoed bool
	}{
		{"754", chris.StatusSubmitted, false},
		{"755", chris.StatusFatalError, false},
		{"756", chris.StatusDepartmentalError, false},
		{"757", chris.StatusPending, true},
	}

	for _, tc := range cases {
		resp, err := ts.service.EvaluatePoll(pollURL, "1E242F2B57F94BCD8DA9051B5F3004B2", tc.office)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.Status, "office %s", tc.office)
		if tc.echoed {
			assert.Equal(t, pollURL, resp.PollURL)
		} else {
			assert.Empty(t, resp.PollURL)
		}
	}
}

func TestEvaluatePollBadToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ts := newTestService(t, ctrl)

	tokens := []string{
		"",
		"https://chris.example.com/poll/sub-999",
		"https://chris.example.com/poll/sub-999?timestamp=30th%20of%20May",
		"://missing-scheme",
	}

	for _, token := range tokens {
		_, err := ts.service.EvaluatePoll(token, "1E242F2B57F94BCD8DA9051B5F3004B2", "754")
		assert.Error(t, err, "token %q should not decode", token)
	}
}

func TestEvaluatePollWindowConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.WithValue(context.Background(), appctx.PollWindowCTXKey, 30*time.Second)
	service, err := NewService(ctx,
		mockchris.NewMockClient(ctrl),
		mockauth.NewMockClient(ctrl),
		mockaudit.NewMockEmitter(ctrl),
		govtalk.NewBuilder("SENDER1", "epaye-gateway", "test"),
		govtalk.NewConverter())
	require.NoError(t, err)

	pollURL := "https://chris.example.com/poll/sub-999?timestamp=" + testNow.Format(time.RFC3339)

	service.now = func() time.Time { return testNow.Add(20 * time.Second) }
	resp, err := service.EvaluatePoll(pollURL, "1E242F2B57F94BCD8DA9051B5F3004B2", "754")
	require.NoError(t, err)
	assert.Equal(t, chris.StatusPending, resp.Status)

	service.now = func() time.Time { return testNow.Add(30 * time.Second) }
	resp, err = service.EvaluatePoll(pollURL, "1E242F2B57F94BCD8DA9051B5F3004B2", "754")
	require.NoError(t, err)
	assert.Equal(t, chris.StatusSubmitted, resp.Status)
}
