package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RawIssueRecord is the nested JSON object the issue tracker returns for a
// single issue, decoded as-is
type RawIssueRecord map[string]interface{}

// Row is one flattened issue, keyed by the canonical field names
type Row map[string]Value

// Header is the canonical, ordered field set every parsed row contains
var Header = []string{
	"key",
	"summary",
	"description",
	"issue_type",
	"components",
	"fix_versions",
	"reporter",
	"assignee",
	"created_datetime",
	"updated_datetime",
	"resolved_datetime",
	"status",
	"labels",
	"original_estimate",
	"remaining_estimate",
	"time_spent",
	"sprints",
}

// IssueKey builds the tracker key for a project and sequence number
func IssueKey(project string, num int) string {
	return fmt.Sprintf("%s-%d", project, num)
}

// IssueNum extracts the numeric suffix from an issue key
func IssueNum(key string) (int, error) {
	i := strings.LastIndex(key, "-")
	if i < 0 || i == len(key)-1 {
		return 0, fmt.Errorf("malformed issue key %q", key)
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed issue key %q: %w", key, err)
	}
	return n, nil
}
