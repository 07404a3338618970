package parser

// sprintsCustomField is where Jira's agile plugin serializes sprint
// membership on an issue
const sprintsCustomField = "customfield_10004"

// fieldPaths maps each canonical field to its nested key path in the raw
// record. Defined once; Parse resolves every path on every record.
var fieldPaths = map[string][]string{
	"key":                {"key"},
	"summary":            {"fields", "summary"},
	"description":        {"fields", "description"},
	"issue_type":         {"fields", "issuetype", "name"},
	"components":         {"fields", "components"},
	"fix_versions":       {"fields", "fixVersions"},
	"reporter":           {"fields", "reporter", "name"},
	"assignee":           {"fields", "assignee", "name"},
	"created_datetime":   {"fields", "created"},
	"updated_datetime":   {"fields", "updated"},
	"resolved_datetime":  {"fields", "resolutiondate"},
	"status":             {"fields", "status", "name"},
	"labels":             {"fields", "labels"},
	"original_estimate":  {"fields", "timetracking", "originalEstimateSeconds"},
	"remaining_estimate": {"fields", "timetracking", "remainingEstimateSeconds"},
	"time_spent":         {"fields", "timetracking", "timeSpentSeconds"},
	"sprints":            {"fields", sprintsCustomField},
}
