package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/go-querystring/query"
	cache "github.com/patrickmn/go-cache"

	"github.com/tax-intl/epaye-go/libs/clients"
	appctx "github.com/tax-intl/epaye-go/libs/context"
	errorutils "github.com/tax-intl/epaye-go/libs/errors"
	"github.com/tax-intl/epaye-go/libs/middleware"
)

// Client abstracts over the underlying client
type Client interface {
	Authority(ctx context.Context) (*Authority, error)
}

// HTTPClient wraps http.Client for interacting with the authority service
type HTTPClient struct {
	client *clients.SimpleHTTPClient
	cache  *cache.Cache
}

// NewWithContext returns a new HTTPClient, retrieving the base URL from the context
func NewWithContext(ctx context.Context) (Client, error) {
	// get the server url from context
	serverURL, err := appctx.GetStringFromContext(ctx, appctx.AuthServerCTXKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get AuthServer from context: %w", err)
	}

	// callers authenticate with their own bearer token, no service token
	client, err := clients.New(serverURL, "")
	if err != nil {
		return nil, err
	}

	// get default timeout and purge from context
	expires, err := appctx.GetDurationFromContext(ctx, appctx.AuthCacheExpiryDurationCTXKey)
	if err != nil {
		expires = 10 * time.Second
	}

	purge, err := appctx.GetDurationFromContext(ctx, appctx.AuthCachePurgeDurationCTXKey)
	if err != nil {
		purge = 1 * time.Minute
	}

	return NewClientWithPrometheus(
		&HTTPClient{
			client: client,
			cache:  cache.New(expires, purge),
		}, "auth_context_client"), nil
}

// New returns a new HTTPClient, retrieving the base URL from the environment
func New() (Client, error) {
	serverEnvKey := "AUTH_SERVICE"
	serverURL := os.Getenv(serverEnvKey)
	if len(serverURL) == 0 {
		return nil, errors.New(serverEnvKey + " was empty")
	}
	client, err := clients.New(serverURL, "")
	if err != nil {
		return nil, err
	}
	return NewClientWithPrometheus(
		&HTTPClient{
			client: client,
			cache:  cache.New(10*time.Second, 1*time.Minute),
		}, "auth_client"), err
}

// Authority carries the caller's EPAYE enrolment
type Authority struct {
	AccountID          string `json:"accountId"`
	TaxOfficeNumber    string `json:"taxOfficeNumber"`
	TaxOfficeReference string `json:"taxOfficeReference"`
}

// EmpRef is the combined employer reference of the enrolment
func (a *Authority) EmpRef() string {
	return a.TaxOfficeNumber + "/" + a.TaxOfficeReference
}

// authorityParams narrows the authority response to the fields the gateway reads
type authorityParams struct {
	Fields string `url:"fields,omitempty"`
}

// GenerateQueryString - implement the QueryStringBody interface
func (p *authorityParams) GenerateQueryString() (url.Values, error) {
	return query.Values(p)
}

// Authority resolves the caller's enrolment with the bearer token carried in ctx.
// Unauthorized callers get ErrNotAuthorized without the upstream error detail.
func (c *HTTPClient) Authority(ctx context.Context) (*Authority, error) {
	token := middleware.GetBearerToken(ctx)
	if token == "" {
		return nil, errorutils.ErrNotAuthorized
	}

	// check cache for this token's enrolment
	if authority, found := c.cache.Get(token); found {
		return authority.(*Authority), nil
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, "/v1/auth/authority", nil, &authorityParams{
		Fields: "accountId,taxOfficeNumber,taxOfficeReference",
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("authorization", "Bearer "+token)

	var body Authority
	_, err = c.client.Do(ctx, req, &body)
	if err != nil {
		if state, stateErr := clients.UnwrapHTTPState(err); stateErr == nil {
			if state.Status == http.StatusUnauthorized || state.Status == http.StatusForbidden {
				return nil, errorutils.ErrNotAuthorized
			}
		}
		return nil, err
	}

	c.cache.Set(token, &body, cache.DefaultExpiration)

	return &body, nil
}
