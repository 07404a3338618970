package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
)

const sampleIssue = `{
	"key": "TEST-123",
	"fields": {
		"summary": "Builds failing in Jenkins",
		"description": "The nightly build has been red since Tuesday.",
		"issuetype": {"name": "Bug", "subtask": false},
		"components": [{"name": "build"}, {"name": "ci"}],
		"fixVersions": [],
		"reporter": {"name": "jsmith", "displayName": "J. Smith"},
		"assignee": {"name": "adoe"},
		"created": "2017-10-23T09:10:22.500-0500",
		"updated": "2017-10-30T11:51:04.130-0500",
		"resolutiondate": null,
		"status": {"name": "In Progress"},
		"labels": ["infra", "urgent"],
		"timetracking": {
			"originalEstimateSeconds": 28800,
			"remainingEstimateSeconds": null,
			"timeSpentSeconds": 14400
		},
		"customfield_10004": [
			"com.atlassian.greenhopper.service.sprint.Sprint@6da6295[id=71,rapidViewId=51,state=CLOSED,name=Total pkg 2017: 10/23 - 10/27,goal=,startDate=2017-10-23T13:29:14.110-05:00,endDate=2017-10-27T13:29:00.000-05:00,completeDate=2017-10-30T08:32:17.129-05:00,sequence=71]",
			"com.atlassian.greenhopper.service.sprint.Sprint@1f1b4e2[id=72,rapidViewId=51,state=ACTIVE,name=Total pkg 2017: 10/30 - 11/3,goal=,startDate=2017-10-30T13:30:00.000-05:00,endDate=2017-11-03T13:30:00.000-05:00,completeDate=<null>,sequence=72]"
		]
	}
}`

func decodeIssue(t *testing.T, raw string) domain.RawIssueRecord {
	t.Helper()
	var record domain.RawIssueRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	return record
}

func TestParse_FullRecord(t *testing.T) {
	record := decodeIssue(t, sampleIssue)

	row, err := New().Parse(record)
	require.NoError(t, err)

	// Every canonical field is present
	for _, field := range domain.Header {
		_, ok := row[field]
		assert.True(t, ok, "missing field %s", field)
	}

	assert.Equal(t, "TEST-123", row["key"].Str())
	assert.Equal(t, "Builds failing in Jenkins", row["summary"].Str())
	assert.Equal(t, "Bug", row["issue_type"].Str())
	assert.Equal(t, "build,ci", row["components"].Str())
	assert.Equal(t, "jsmith", row["reporter"].Str())
	assert.Equal(t, "adoe", row["assignee"].Str())
	assert.Equal(t, "In Progress", row["status"].Str())
	assert.Equal(t, "infra,urgent", row["labels"].Str())
	assert.Equal(t, float64(28800), row["original_estimate"].Num())
	assert.Equal(t, float64(14400), row["time_spent"].Num())

	// Null leaves stay null
	assert.True(t, row["resolved_datetime"].IsNull())
	assert.True(t, row["remaining_estimate"].IsNull())

	// Empty object list renders as the empty string, not null
	assert.True(t, row["fix_versions"].Equal(domain.String("")))

	// Sprint names extracted from the serialized strings, joined in order
	assert.Equal(t, "Total pkg 2017: 10/23 - 10/27,Total pkg 2017: 10/30 - 11/3", row["sprints"].Str())
}

func TestParse_AbsentFieldsAreNull(t *testing.T) {
	record := decodeIssue(t, `{"key": "TEST-1", "fields": {"summary": "minimal"}}`)

	row, err := New().Parse(record)
	require.NoError(t, err)

	assert.Equal(t, "minimal", row["summary"].Str())
	assert.True(t, row["issue_type"].IsNull())
	assert.True(t, row["assignee"].IsNull())
	assert.True(t, row["sprints"].IsNull())
	assert.True(t, row["time_spent"].IsNull())
}

func TestLeafValue_NestedScalar(t *testing.T) {
	record := decodeIssue(t, `{"fields": {"issuetype": {"name": "Task"}}}`)

	v, err := LeafValue(record, []string{"fields", "issuetype", "name"})
	require.NoError(t, err)
	assert.Equal(t, "Task", v.Str())
}

func TestLeafValue_NullIntermediateIsAbsent(t *testing.T) {
	record := decodeIssue(t, `{"fields": {"assignee": null}}`)

	v, err := LeafValue(record, []string{"fields", "assignee", "name"})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestLeafValue_NonObjectIntermediate(t *testing.T) {
	record := decodeIssue(t, `{"fields": {"assignee": "not an object"}}`)

	_, err := LeafValue(record, []string{"fields", "assignee", "name"})
	assert.True(t, apperrors.IsMalformedRecord(err))
}

func TestLeafValue_ObjectListWithoutName(t *testing.T) {
	record := decodeIssue(t, `{"fields": {"components": [{"id": "10000"}]}}`)

	_, err := LeafValue(record, []string{"fields", "components"})
	assert.True(t, apperrors.IsMalformedRecord(err))
}

func TestLeafValue_MixedList(t *testing.T) {
	record := decodeIssue(t, `{"fields": {"labels": ["one", 2]}}`)

	_, err := LeafValue(record, []string{"fields", "labels"})
	assert.True(t, apperrors.IsMalformedRecord(err))
}

func TestSprintInfo_Attributes(t *testing.T) {
	record := decodeIssue(t, sampleIssue)

	name, err := SprintInfo(record, "name")
	require.NoError(t, err)
	assert.Equal(t, "Total pkg 2017: 10/23 - 10/27,Total pkg 2017: 10/30 - 11/3", name.Str())

	start, err := SprintInfo(record, "startDate")
	require.NoError(t, err)
	assert.Equal(t, "2017-10-23T13:29:14.110-05:00,2017-10-30T13:30:00.000-05:00", start.Str())

	end, err := SprintInfo(record, "endDate")
	require.NoError(t, err)
	assert.Equal(t, "2017-10-27T13:29:00.000-05:00,2017-11-03T13:30:00.000-05:00", end.Str())
}

func TestSprintInfo_NoSprintFieldIsNull(t *testing.T) {
	record := decodeIssue(t, `{"key": "TEST-1", "fields": {}}`)

	v, err := SprintInfo(record, "name")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestSprintInfo_UnknownAttribute(t *testing.T) {
	record := decodeIssue(t, sampleIssue)

	_, err := SprintInfo(record, "velocity")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}

func TestSprintInfo_NonStringListIsMalformed(t *testing.T) {
	record := decodeIssue(t, `{"fields": {"customfield_10004": [{"id": 71}]}}`)

	_, err := SprintInfo(record, "name")
	assert.True(t, apperrors.IsMalformedRecord(err))
}
