package graphql

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/errors"
)

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestDo_SendsBodyAndDecodesData(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "da2-test", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"data":{"ping":"pong"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithAuthorizer(APIKey("da2-test")))
	var out struct {
		Ping string `json:"ping"`
	}
	err := c.Do(context.Background(), Request{Query: "query Ping { ping }", OperationName: "Ping", Variables: map[string]any{"a": 1}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "pong", out.Ping)
	assert.Equal(t, "Ping", got.OperationName)
	assert.Equal(t, "query Ping { ping }", got.Query)
	assert.EqualValues(t, 1, got.Variables["a"])
}

func TestDo_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null,"errors":[{"message":"Unauthorized"},{"message":"try again"}]}`)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Do(context.Background(), Request{OperationName: "ListComments"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))

	re, ok := errors.AsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, "ListComments", re.Op)
	assert.Contains(t, re.Error(), "Unauthorized; try again")
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"data":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMaxRetries(2), WithBackoff(noWait))
	require.NoError(t, c.Do(context.Background(), Request{OperationName: "CreateComment"}, nil))
	assert.EqualValues(t, 3, calls.Load())
}

func TestDo_OneShotByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, WithBackoff(noWait)).Do(context.Background(), Request{OperationName: "DeleteComment"}, nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	re, ok := errors.AsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, re.Status)
}

func TestDo_ClientErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, WithMaxRetries(5), WithBackoff(noWait)).Do(context.Background(), Request{OperationName: "ListComments"}, nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.Contains(t, err.Error(), "bad key")
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url, WithMaxRetries(1), WithBackoff(noWait)).Do(context.Background(), Request{OperationName: "ListComments"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))
}

func TestDo_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Do(context.Background(), Request{OperationName: "ListComments"}, nil)
	assert.True(t, errors.IsUnavailable(err))
}

func TestIAM_SignsRequest(t *testing.T) {
	var authz, amzDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		amzDate = r.Header.Get("X-Amz-Date")
		_, _ = io.WriteString(w, `{"data":{}}`)
	}))
	defer srv.Close()

	creds := credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", "")
	iam := NewIAMWithCredentials(aws.NewCredentialsCache(creds), "us-east-1")
	iam.now = func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, NewClient(srv.URL, WithAuthorizer(iam)).Do(context.Background(), Request{OperationName: "ListComments"}, nil))
	assert.True(t, strings.HasPrefix(authz, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20250701/us-east-1/appsync/aws4_request"), authz)
	assert.Equal(t, "20250701T000000Z", amzDate)
}

func TestNewAuthorizer(t *testing.T) {
	ctx := context.Background()

	a, err := NewAuthorizer(ctx, "api_key", "k", "")
	require.NoError(t, err)
	assert.Equal(t, APIKey("k"), a)

	a, err = NewAuthorizer(ctx, "none", "", "")
	require.NoError(t, err)
	assert.Equal(t, None{}, a)

	_, err = NewAuthorizer(ctx, "cognito", "", "")
	assert.Error(t, err)
}
