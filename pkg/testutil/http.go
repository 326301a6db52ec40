// Package testutil provides common test utilities for handler and integration tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/httputil"
)

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewBearerRequest creates a GET request carrying token in the Authorization header.
func NewBearerRequest(t *testing.T, path, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// ReadBody reads the response body as bytes.
func ReadBody(t *testing.T, rr *httptest.ResponseRecorder) []byte {
	t.Helper()
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err, "failed to read response body")
	return body
}

// UnmarshalEnvelope unmarshals the response body as a response envelope.
// Content is left as raw JSON for the caller to decode.
func UnmarshalEnvelope(t *testing.T, rr *httptest.ResponseRecorder) (httputil.Envelope, json.RawMessage) {
	t.Helper()
	var raw struct {
		httputil.Envelope
		Content json.RawMessage `json:"content"`
	}
	require.NoError(t, json.Unmarshal(ReadBody(t, rr), &raw), "failed to unmarshal response")
	return raw.Envelope, raw.Content
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertStatusAndError asserts the status code and the error code of an error envelope.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env, _ := UnmarshalEnvelope(t, rr)
	assert.Equal(t, httputil.StatusError, env.Status)
	assert.Equal(t, expectedCode, env.Error, "unexpected error code")
}
