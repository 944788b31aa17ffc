package chris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tax-intl/epaye-go/libs/clients"
	appctx "github.com/tax-intl/epaye-go/libs/context"
	"github.com/tax-intl/epaye-go/libs/govtalk"
	"github.com/tax-intl/epaye-go/libs/middleware"
)

// Client abstracts over the underlying client
type Client interface {
	Create(ctx context.Context, req CreateRequest) (string, error)
	Submit(ctx context.Context, envelope *govtalk.Envelope) (*Outcome, error)
	Update(ctx context.Context, submissionID string, req UpdateRequest) error
}

// HTTPClient wraps http.Client for interacting with the chris bridge
type HTTPClient struct {
	client *clients.SimpleHTTPClient
}

// NewWithContext returns a new HTTPClient, retrieving the base URL from the context
func NewWithContext(ctx context.Context) (Client, error) {
	// get the server url from context
	serverURL, err := appctx.GetStringFromContext(ctx, appctx.CHRISServerCTXKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get CHRISServer from context: %w", err)
	}

	// get the server access token from context
	accessToken, err := appctx.GetStringFromContext(ctx, appctx.CHRISTokenCTXKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get CHRISToken from context: %w", err)
	}

	client, err := clients.NewWithHTTPClient(serverURL, accessToken, newInstrumentedHTTPClient())
	if err != nil {
		return nil, err
	}

	return NewClientWithPrometheus(&HTTPClient{client}, "chris_context_client"), nil
}

// New returns a new HTTPClient, retrieving the base URL from the environment
func New() (Client, error) {
	serverEnvKey := "CHRIS_SERVICE"
	serverURL := os.Getenv(serverEnvKey)
	if len(serverURL) == 0 {
		return nil, errors.New(serverEnvKey + " was empty")
	}
	client, err := clients.NewWithHTTPClient(serverURL, os.Getenv("CHRIS_TOKEN"), newInstrumentedHTTPClient())
	if err != nil {
		return nil, err
	}
	return NewClientWithPrometheus(&HTTPClient{client}, "chris_client"), err
}

// newInstrumentedHTTPClient counts round trips to the bridge by host and method
func newInstrumentedHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   time.Second * 10,
		Transport: middleware.InstrumentRoundTripper(&http.Transport{}, "chris"),
	}
}

// Status - the closed set of submission statuses the gateway understands
type Status int

const (
	// StatusAccepted - the filing was accepted and carries a polling endpoint
	StatusAccepted Status = iota
	// StatusSubmitted - the filing completed with a receipt
	StatusSubmitted
	// StatusSubmittedNoReceipt - the filing completed without a receipt
	StatusSubmittedNoReceipt
	// StatusDepartmentalError - the department rejected the filing
	StatusDepartmentalError
	// StatusFatalError - the filing failed terminally
	StatusFatalError
	// StatusPending - a poll has not matured yet
	StatusPending
)

// MarshalJSON - marshaller for submission status
func (s Status) MarshalJSON() ([]byte, error) {
	var status string
	switch s {
	case StatusAccepted:
		status = "ACCEPTED"
	case StatusSubmitted:
		status = "SUBMITTED"
	case StatusSubmittedNoReceipt:
		status = "SUBMITTED_NO_RECEIPT"
	case StatusDepartmentalError:
		status = "DEPARTMENTAL_ERROR"
	case StatusFatalError:
		status = "FATAL_ERROR"
	case StatusPending:
		status = "PENDING"
	default:
		return nil, fmt.Errorf("submission status marshal error: invalid status %d", int(s))
	}

	return json.Marshal(status)
}

// UnmarshalJSON - unmarshaller for submission status
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	err := json.Unmarshal(data, &str)
	if err != nil {
		return fmt.Errorf("submission status unmarshal error: %w", err)
	}

	switch str {
	case "ACCEPTED":
		*s = StatusAccepted
	case "SUBMITTED":
		*s = StatusSubmitted
	case "SUBMITTED_NO_RECEIPT":
		*s = StatusSubmittedNoReceipt
	case "DEPARTMENTAL_ERROR":
		*s = StatusDepartmentalError
	case "FATAL_ERROR":
		*s = StatusFatalError
	case "PENDING":
		*s = StatusPending
	default:
		return fmt.Errorf("submission status unmarshal error: invalid status %s", str)
	}

	return nil
}

// String - stringer for submission status
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "ACCEPTED"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusSubmittedNoReceipt:
		return "SUBMITTED_NO_RECEIPT"
	case StatusDepartmentalError:
		return "DEPARTMENTAL_ERROR"
	case StatusFatalError:
		return "FATAL_ERROR"
	case StatusPending:
		return "PENDING"
	default:
		return fmt.Sprintf("%d", int(s))
	}
}

// GovTalkError is the structured error a completed filing can carry
type GovTalkError struct {
	Number string `json:"number,omitempty"`
	Type   string `json:"type,omitempty"`
	Text   string `json:"text"`
}

// ResponseEndPoint tells an accepted filing where and how often to poll
type ResponseEndPoint struct {
	URL          string `json:"url"`
	PollInterval int    `json:"pollIntervalSeconds"`
}

// Outcome is the upstream result of dispatching an envelope
type Outcome struct {
	Status           Status            `json:"status"`
	RawBody          string            `json:"rawBody"`
	CorrelationID    string            `json:"correlationId"`
	GatewayTimestamp string            `json:"gatewayTimestamp,omitempty"`
	ResponseEndPoint *ResponseEndPoint `json:"responseEndPoint,omitempty"`
	Error            *GovTalkError     `json:"error,omitempty"`
}

// CreateRequest is the payload for tracking a new filing period
type CreateRequest struct {
	InstanceID string `json:"instanceId"`
	TaxYear    int    `json:"taxYear"`
	TaxMonth   int    `json:"taxMonth"`
}

// UpdateRequest mutates a tracked filing period
type UpdateRequest struct {
	InstanceID        string `json:"instanceId"`
	TaxYear           int    `json:"taxYear"`
	TaxMonth          int    `json:"taxMonth"`
	SubmittableStatus string `json:"submittableStatus"`
}

type createResponse struct {
	SubmissionID string `json:"submissionId"`
}

// Create tracks a new filing period upstream, returning the submission id
func (c *HTTPClient) Create(ctx context.Context, createReq CreateRequest) (string, error) {
	req, err := c.client.NewRequest(ctx, http.MethodPost, "/v1/filings", createReq, nil)
	if err != nil {
		return "", err
	}

	var body createResponse
	_, err = c.client.Do(ctx, req, &body)
	if err != nil {
		return "", err
	}

	return body.SubmissionID, nil
}

// Submit dispatches a constructed envelope, returning the submission outcome
func (c *HTTPClient) Submit(ctx context.Context, envelope *govtalk.Envelope) (*Outcome, error) {
	req, err := c.client.NewRequest(ctx, http.MethodPost, "/v1/filings/submit", envelope, nil)
	if err != nil {
		return nil, err
	}

	var body Outcome
	_, err = c.client.Do(ctx, req, &body)
	if err != nil {
		return nil, err
	}

	return &body, nil
}

// Update mutates the tracked filing period identified by submissionID
func (c *HTTPClient) Update(ctx context.Context, submissionID string, updateReq UpdateRequest) error {
	req, err := c.client.NewRequest(ctx, http.MethodPost, "/v1/filings/"+submissionID, updateReq, nil)
	if err != nil {
		return err
	}

	_, err = c.client.Do(ctx, req, nil)
	return err
}
