package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
)

func TestJiraFetcher_Found(t *testing.T) {
	var gotPath, gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"key": "TEST-1", "fields": {"summary": "a bug"}}`))
	}))
	defer server.Close()

	f := NewJiraFetcher(server.URL, "user", "token")
	record, outcome, err := f.FetchIssue(context.Background(), "TEST-1")
	require.NoError(t, err)

	assert.Equal(t, OutcomeFound, outcome)
	assert.Equal(t, "/rest/api/2/issue/TEST-1", gotPath)
	assert.Equal(t, "user", gotUser)
	assert.Equal(t, "token", gotPass)

	// The record is the decoded response, untouched
	assert.Equal(t, "TEST-1", record["key"])
	fields := record["fields"].(map[string]interface{})
	assert.Equal(t, "a bug", fields["summary"])
}

func TestJiraFetcher_NotFoundIsAnOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewJiraFetcher(server.URL, "user", "token")
	record, outcome, err := f.FetchIssue(context.Background(), "TEST-99")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Nil(t, record)
}

func TestJiraFetcher_UnauthorizedIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := NewJiraFetcher(server.URL, "user", "bad-token")
	_, _, err := f.FetchIssue(context.Background(), "TEST-1")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestJiraFetcher_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	f := NewJiraFetcher(server.URL, "user", "token")
	_, _, err := f.FetchIssue(context.Background(), "TEST-1")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeMalformedResponse, appErr.Code)
}

func TestJiraFetcher_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewJiraFetcher(server.URL, "user", "token")
	_, _, err := f.FetchIssue(context.Background(), "TEST-1")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeMalformedResponse, appErr.Code)
}
