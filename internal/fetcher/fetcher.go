package fetcher

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	"github.com/kurihiro0119/jira-effort-metrics/internal/logger"
)

// progressInterval is how many probes pass between progress reports
const progressInterval = 50

// Outcome classifies a single issue lookup
type Outcome int

const (
	// OutcomeFound means the probed key exists and a record was returned
	OutcomeFound Outcome = iota
	// OutcomeNotFound means the probed key does not exist. Whether that is a
	// gap or the end of the range depends on whether anything was found
	// earlier in the session; FetchState decides.
	OutcomeNotFound
)

// Fetcher performs a single issue lookup against the tracker
type Fetcher interface {
	FetchIssue(ctx context.Context, key string) (domain.RawIssueRecord, Outcome, error)
}

// StateRecorder persists resume state when a fetch pass exhausts its range
type StateRecorder interface {
	RecordLastRetrieved(lastKey, runID string) error
}

// FetchState is the session state threaded through a sequential fetch pass.
// It is a value: each lookup produces the next state via Next, so the
// termination logic is testable without a live fetcher.
type FetchState struct {
	Current       int
	FoundAny      bool
	MoreToPull    bool
	LastRetrieved string
}

// NewFetchState returns the state at the start of a pass
func NewFetchState(start int) FetchState {
	return FetchState{Current: start, MoreToPull: true}
}

// Next returns the state after one lookup of key with the given outcome.
// A not-found after at least one found ends the pass and records the probed
// key for resume; a not-found before any found is a tolerated gap.
func (s FetchState) Next(outcome Outcome, key string) FetchState {
	next := s
	next.Current = s.Current + 1
	switch outcome {
	case OutcomeFound:
		next.FoundAny = true
		next.LastRetrieved = key
	case OutcomeNotFound:
		if s.FoundAny {
			next.MoreToPull = false
			next.LastRetrieved = key
		}
	}
	return next
}

// Iterator walks a project's issue numbers sequentially and yields each
// record that exists
type Iterator struct {
	fetcher Fetcher
	project string
	start   int
	end     int // 0 means unbounded
	limiter RateLimiter
	state   StateRecorder
	log     *zap.Logger
}

// NewIterator creates an iterator over [start, end]. end == 0 leaves the
// range open: iteration then runs until a not-found follows a found.
func NewIterator(f Fetcher, project string, start, end int, state StateRecorder) *Iterator {
	return &Iterator{
		fetcher: f,
		project: project,
		start:   start,
		end:     end,
		limiter: NewRateLimiter(),
		state:   state,
		log:     logger.GetLogger(),
	}
}

// Each invokes fn once per existing issue, in sequence-number order. Gaps
// before the first found issue are skipped silently; a gap after a found
// issue ends the pass and records resume state best-effort.
func (it *Iterator) Each(ctx context.Context, fn func(domain.RawIssueRecord) error) error {
	st := NewFetchState(it.start)
	runID := uuid.New().String()
	probes := 0

	for st.MoreToPull {
		if it.end != 0 && st.Current > it.end {
			break
		}
		if err := it.limiter.Wait(ctx); err != nil {
			return err
		}

		key := domain.IssueKey(it.project, st.Current)
		probes++
		if probes%progressInterval == 0 {
			it.log.Info("fetch progress",
				zap.String("project", it.project),
				zap.String("current", key),
				zap.Int("probes", probes),
			)
		}

		record, outcome, err := it.fetcher.FetchIssue(ctx, key)
		if err != nil {
			return err
		}

		next := st.Next(outcome, key)
		if outcome == OutcomeFound {
			if err := fn(record); err != nil {
				return err
			}
		}
		if !next.MoreToPull {
			it.recordResume(next.LastRetrieved, runID)
		}
		st = next
	}

	return nil
}

// recordResume persists the terminal key. Failure to persist must not fail
// the pass; the dataset in memory is still good.
func (it *Iterator) recordResume(lastKey, runID string) {
	if it.state == nil {
		return
	}
	if err := it.state.RecordLastRetrieved(lastKey, runID); err != nil {
		it.log.Warn("failed to record resume state",
			zap.String("last_ticket_retrieved", lastKey),
			zap.Error(err),
		)
	}
}
