package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(routes map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestGetDatasetSummary(t *testing.T) {
	server := newTestServer(map[string]string{
		"/api/v1/dataset/summary": `{"data": {"rows": 12, "columns": ["summary", "time_spent"], "first_issue": 1, "last_issue": 40}}`,
	})
	defer server.Close()

	summary, err := NewClient(server.URL).GetDatasetSummary()
	require.NoError(t, err)

	assert.Equal(t, 12, summary.Rows)
	assert.Equal(t, []string{"summary", "time_spent"}, summary.Columns)
	assert.Equal(t, 1, summary.FirstIssue)
	assert.Equal(t, 40, summary.LastIssue)
}

func TestGetSprintBugs(t *testing.T) {
	server := newTestServer(map[string]string{
		"/api/v1/sprints/bugs": `{"data": {"sprints": ["Sprint 1", "Sprint 2"], "counts": {"Sprint 1": 3, "Sprint 2": 0}}}`,
	})
	defer server.Close()

	bugs, err := NewClient(server.URL).GetSprintBugs()
	require.NoError(t, err)

	assert.Equal(t, []string{"Sprint 1", "Sprint 2"}, bugs.Sprints)
	assert.Equal(t, 3, bugs.Counts["Sprint 1"])
	assert.Equal(t, 0, bugs.Counts["Sprint 2"])
}

func TestGetEstimateAccuracy(t *testing.T) {
	server := newTestServer(map[string]string{
		"/api/v1/estimates/accuracy": `{"data": [{"Issue": 7, "TimeSpent": 5400, "OriginalEstimate": 7200, "Difference": 1800}]}`,
	})
	defer server.Close()

	rows, err := NewClient(server.URL).GetEstimateAccuracy()
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, 7, rows[0].Issue)
	assert.Equal(t, float64(1800), rows[0].Difference)
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(map[string]string{
		"/health": `{"status": "ok"}`,
	})
	defer server.Close()

	assert.NoError(t, NewClient(server.URL).HealthCheck())
}

func TestErrorStatusSurfaces(t *testing.T) {
	server := newTestServer(map[string]string{})
	defer server.Close()

	_, err := NewClient(server.URL).GetDatasetSummary()
	assert.Error(t, err)
}
