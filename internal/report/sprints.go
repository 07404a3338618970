package report

import (
	"strings"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
)

// SprintTally is a per-sprint count of bug-typed issues. Order preserves
// the first time each sprint was seen in the dataset.
type SprintTally struct {
	Sprints []string
	Counts  map[string]int
}

// TallyBugsBySprint counts Bug-typed rows per sprint. Rows without sprint
// membership are skipped; a sprint seen only on non-bug rows still appears
// with a zero count.
func TallyBugsBySprint(t *dataset.Table) SprintTally {
	tally := SprintTally{Counts: make(map[string]int)}

	for _, num := range t.Indexes() {
		sprints := t.Value(num, "sprints")
		if sprints.IsNull() || sprints.Str() == "" {
			continue
		}
		isBug := t.Value(num, "issue_type").Str() == "Bug"

		for _, sprint := range strings.Split(sprints.Str(), ",") {
			if _, seen := tally.Counts[sprint]; !seen {
				tally.Sprints = append(tally.Sprints, sprint)
				tally.Counts[sprint] = 0
			}
			if isBug {
				tally.Counts[sprint]++
			}
		}
	}
	return tally
}

// EstimateRow pairs an issue's recorded effort with its original estimate
type EstimateRow struct {
	Issue            int
	TimeSpent        float64
	OriginalEstimate float64
	Difference       float64
}

// EstimateAccuracy returns, in index order, every row where both the
// original estimate and the time spent were recorded
func EstimateAccuracy(t *dataset.Table) []EstimateRow {
	var rows []EstimateRow
	for _, num := range t.Indexes() {
		spent := t.Value(num, "time_spent")
		estimate := t.Value(num, "original_estimate")
		if spent.IsNull() || estimate.IsNull() {
			continue
		}
		rows = append(rows, EstimateRow{
			Issue:            num,
			TimeSpent:        spent.Num(),
			OriginalEstimate: estimate.Num(),
			Difference:       estimate.Num() - spent.Num(),
		})
	}
	return rows
}
