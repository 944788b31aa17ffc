package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tax-intl/epaye-go/libs/clients"
	errorutils "github.com/tax-intl/epaye-go/libs/errors"
	"github.com/tax-intl/epaye-go/libs/middleware"
)

// contextWithBearerToken runs a request through the bearer token middleware to
// get a context shaped the way the router produces it
func contextWithBearerToken(t *testing.T, token string) context.Context {
	var ctx context.Context
	handler := middleware.BearerToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, ctx)
	return ctx
}

func TestAuthority(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/auth/authority", r.URL.Path)
		assert.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))
		assert.Equal(t, "accountId,taxOfficeNumber,taxOfficeReference", r.URL.Query().Get("fields"))

		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(`{"accountId":"acc-1","taxOfficeNumber":"754","taxOfficeReference":"XZ00064"}`))
	}))
	defer server.Close()

	client, err := clients.NewWithHTTPClient(server.URL, "", server.Client())
	require.NoError(t, err)

	c := &HTTPClient{client: client, cache: cache.New(time.Minute, time.Minute)}
	ctx := contextWithBearerToken(t, "caller-token")

	authority, err := c.Authority(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", authority.AccountID)
	assert.Equal(t, "754", authority.TaxOfficeNumber)
	assert.Equal(t, "754/XZ00064", authority.EmpRef())

	// second resolution for the same token comes from cache
	_, err = c.Authority(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestAuthorityUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := clients.NewWithHTTPClient(server.URL, "", server.Client())
	require.NoError(t, err)

	c := &HTTPClient{client: client, cache: cache.New(time.Minute, time.Minute)}

	_, err = c.Authority(contextWithBearerToken(t, "bad-token"))
	assert.ErrorIs(t, err, errorutils.ErrNotAuthorized)
}

func TestAuthorityMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Fail(t, "upstream should not be called without a token")
	}))
	defer server.Close()

	client, err := clients.NewWithHTTPClient(server.URL, "", server.Client())
	require.NoError(t, err)

	c := &HTTPClient{client: client, cache: cache.New(time.Minute, time.Minute)}

	_, err = c.Authority(contextWithBearerToken(t, ""))
	assert.ErrorIs(t, err, errorutils.ErrNotAuthorized)
}
