package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the API client for jira-effort-metrics
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// DatasetSummary describes the accumulated dataset's shape
type DatasetSummary struct {
	Rows       int      `json:"rows"`
	Columns    []string `json:"columns"`
	FirstIssue int      `json:"first_issue"`
	LastIssue  int      `json:"last_issue"`
}

// SprintBugs is a per-sprint count of bug-typed issues
type SprintBugs struct {
	Sprints []string       `json:"sprints"`
	Counts  map[string]int `json:"counts"`
}

// EstimateRow pairs an issue's recorded effort with its original estimate
type EstimateRow struct {
	Issue            int     `json:"Issue"`
	TimeSpent        float64 `json:"TimeSpent"`
	OriginalEstimate float64 `json:"OriginalEstimate"`
	Difference       float64 `json:"Difference"`
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetDatasetSummary retrieves the dataset summary
func (c *Client) GetDatasetSummary() (*DatasetSummary, error) {
	var response struct {
		Data *DatasetSummary `json:"data"`
	}
	if err := c.get("/api/v1/dataset/summary", &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetSprintBugs retrieves per-sprint bug counts
func (c *Client) GetSprintBugs() (*SprintBugs, error) {
	var response struct {
		Data *SprintBugs `json:"data"`
	}
	if err := c.get("/api/v1/sprints/bugs", &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetEstimateAccuracy retrieves estimate-vs-actual rows
func (c *Client) GetEstimateAccuracy() ([]EstimateRow, error) {
	var response struct {
		Data []EstimateRow `json:"data"`
	}
	if err := c.get("/api/v1/estimates/accuracy", &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(path string, result interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
