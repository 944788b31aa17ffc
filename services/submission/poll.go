package submission

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tax-intl/epaye-go/libs/clients/chris"
	"github.com/tax-intl/epaye-go/libs/inputs"
)

// PollResponse reports where a dispatched filing has got to
type PollResponse struct {
	Status        chris.Status `json:"status"`
	CorrelationID string       `json:"correlationId"`
	PollURL       string       `json:"pollUrl,omitempty"`
}

// ErrPollTokenEmpty - an error that tells the caller the poll url is empty
var ErrPollTokenEmpty = errors.New("failed to decode poll token: poll url cannot be empty")

// PollToken is the poll url handed out with an accepted filing. The dispatch
// instant rides in the timestamp query parameter of the url.
type PollToken struct {
	raw        string
	dispatched time.Time
}

// String - return the string representation of the token
func (t *PollToken) String() string {
	return t.raw
}

// Decode - take raw []byte input and populate the token
func (t *PollToken) Decode(ctx context.Context, input []byte) error {
	if len(input) == 0 {
		return ErrPollTokenEmpty
	}
	t.raw = string(input)

	target, err := url.Parse(t.raw)
	if err != nil {
		return fmt.Errorf("failed to decode poll token: %w", err)
	}

	t.dispatched, err = time.Parse(time.RFC3339, target.Query().Get("timestamp"))
	if err != nil {
		return fmt.Errorf("failed to decode poll token timestamp: %w", err)
	}
	return nil
}

// Validate - implement inputs.Validatable
func (t *PollToken) Validate(ctx context.Context) error {
	if t.dispatched.IsZero() {
		return errors.New("poll token carries no dispatch instant")
	}
	return nil
}

// Tax office numbers the CHRIS poll backend resolves to a terminal status
// once the maturity window has passed. Any other office stays pending.
const (
	officeSubmitted         = "754"
	officeFatalError        = "755"
	officeDepartmentalError = "756"
)

// EvaluatePoll resolves a poll token against the maturity window. A token
// that will not decode is returned as an error for the caller to reject,
// nothing upstream is called.
func (s *Service) EvaluatePoll(pollURL string, correlationID string, taxOfficeNumber string) (*PollResponse, error) {
	var token PollToken
	if err := inputs.DecodeAndValidateString(context.Background(), &token, pollURL); err != nil {
		return nil, err
	}

	response := &PollResponse{
		Status:        chris.StatusPending,
		CorrelationID: correlationID,
		PollURL:       token.String(),
	}

	if s.now().Before(token.dispatched.Add(s.pollWindow)) {
		return response, nil
	}

	switch taxOfficeNumber {
	case officeSubmitted:
		response.Status = chris.StatusSubmitted
		response.PollURL = ""
	case officeFatalError:
		response.Status = chris.StatusFatalError
		response.PollURL = ""
	case officeDepartmentalError:
		response.Status = chris.StatusDepartmentalError
		response.PollURL = ""
	}

	return response, nil
}
