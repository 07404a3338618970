package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
	"github.com/kurihiro0119/jira-effort-metrics/internal/logger"
)

// jiraFetcher implements Fetcher against the Jira REST API
type jiraFetcher struct {
	baseURL  string
	username string
	token    string
	client   *http.Client
	log      *zap.Logger
}

// NewJiraFetcher creates a Fetcher for a Jira instance using basic auth
func NewJiraFetcher(baseURL, username, token string) Fetcher {
	return &jiraFetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		token:    token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.GetLogger(),
	}
}

// FetchIssue looks up a single issue. A 404 is an outcome, not an error:
// range-exhaustion and gaps are control flow decided by the caller.
func (j *jiraFetcher) FetchIssue(ctx context.Context, key string) (domain.RawIssueRecord, Outcome, error) {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s", j.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, OutcomeNotFound, apperrors.NewInternalError("failed to build issue request", err)
	}
	req.SetBasicAuth(j.username, j.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, OutcomeNotFound, apperrors.NewInternalError(fmt.Sprintf("lookup of %s failed", key), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, OutcomeNotFound, apperrors.NewInternalError(fmt.Sprintf("reading response for %s failed", key), err)
		}
		var record domain.RawIssueRecord
		if err := json.Unmarshal(body, &record); err != nil {
			j.log.Error("undecodable issue response",
				zap.String("key", key),
				zap.ByteString("body", body),
			)
			return nil, OutcomeNotFound, apperrors.NewMalformedResponseError(fmt.Sprintf("response for %s is not a JSON object", key), err)
		}
		return record, OutcomeFound, nil

	case http.StatusNotFound:
		return nil, OutcomeNotFound, nil

	case http.StatusUnauthorized:
		return nil, OutcomeNotFound, apperrors.NewUnauthorizedError(fmt.Sprintf("lookup of %s was rejected; check credentials", key))

	default:
		body, _ := io.ReadAll(resp.Body)
		j.log.Error("unexpected issue response",
			zap.String("key", key),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, OutcomeNotFound, apperrors.NewMalformedResponseError(fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, key), nil)
	}
}
