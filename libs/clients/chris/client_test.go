package chris

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tax-intl/epaye-go/libs/clients"
	"github.com/tax-intl/epaye-go/libs/govtalk"
)

func TestStatusMarshal(t *testing.T) {
	wire := map[Status]string{
		StatusAccepted:           `"ACCEPTED"`,
		StatusSubmitted:          `"SUBMITTED"`,
		StatusSubmittedNoReceipt: `"SUBMITTED_NO_RECEIPT"`,
		StatusDepartmentalError:  `"DEPARTMENTAL_ERROR"`,
		StatusFatalError:         `"FATAL_ERROR"`,
		StatusPending:            `"PENDING"`,
	}

	for status, expected := range wire {
		b, err := json.Marshal(status)
		require.NoError(t, err)
		assert.Equal(t, expected, string(b))

		var back Status
		err = json.Unmarshal(b, &back)
		require.NoError(t, err)
		assert.Equal(t, status, back)
	}

	_, err := json.Marshal(Status(42))
	assert.Error(t, err)

	var status Status
	err = json.Unmarshal([]byte(`"NOT_A_STATUS"`), &status)
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/filings", r.URL.Path)

		var req CreateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "123", req.InstanceID)
		assert.Equal(t, 2024, req.TaxYear)
		assert.Equal(t, 4, req.TaxMonth)

		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"submissionId":"sub-999"}`))
	}))
	defer server.Close()

	client, err := clients.NewWithHTTPClient(server.URL, "", server.Client())
	require.NoError(t, err)

	submissionID, err := (&HTTPClient{client}).Create(context.Background(), CreateRequest{
		InstanceID: "123",
		TaxYear:    2024,
		TaxMonth:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-999", submissionID)
}

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/filings/submit", r.URL.Path)

		var envelope govtalk.Envelope
		err := json.NewDecoder(r.Body).Decode(&envelope)
		require.NoError(t, err)
		assert.Equal(t, "1E242F2B57F94BCD8DA9051B5F3004B2", envelope.CorrelationID)

		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ACCEPTED",
			"rawBody": "<GovTalkMessage></GovTalkMessage>",
			"correlationId": "1E242F2B57F94BCD8DA9051B5F3004B2",
			"gatewayTimestamp": "2024-04-05T10:00:00Z",
			"responseEndPoint": {"url": "/poll", "pollIntervalSeconds": 10}
		}`))
	}))
	defer server.Close()

	client, err := clients.NewWithHTTPClient(server.URL, "", server.Client())
	require.NoError(t, err)

	outcome, err := (&HTTPClient{client}).Submit(context.Background(), &govtalk.Envelope{
		CorrelationID: "1E242F2B57F94BCD8DA9051B5F3004B2",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, outcome.Status)
	require.NotNil(t, outcome.ResponseEndPoint)
	assert.Equal(t, 10, outcome.ResponseEndPoint.PollInterval)
	assert.Nil(t, outcome.Error)
}

func TestUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/filings/sub-999", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := clients.NewWithHTTPClient(server.URL, "", server.Client())
	require.NoError(t, err)

	err = (&HTTPClient{client}).Update(context.Background(), "sub-999", UpdateRequest{
		InstanceID:        "123",
		TaxYear:           2024,
		TaxMonth:          4,
		SubmittableStatus: "submittable",
	})
	assert.NoError(t, err)
}

func TestUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream broke`))
	}))
	defer server.Close()

	client, err := clients.NewWithHTTPClient(server.URL, "", server.Client())
	require.NoError(t, err)

	_, err = (&HTTPClient{client}).Create(context.Background(), CreateRequest{InstanceID: "123"})
	require.Error(t, err)

	state, err := clients.UnwrapHTTPState(err)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, state.Status)
}
