package trainer

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
	"github.com/kurihiro0119/jira-effort-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
	"github.com/kurihiro0119/jira-effort-metrics/internal/janitor"
)

// DefaultNeighbors is the default k for the nearest-neighbour predictor
const DefaultNeighbors = 5

// Model is a distance-weighted k-nearest-neighbour predictor fitted on a
// cleaned feature matrix
type Model struct {
	K        int
	Target   string
	Features []string
	X        [][]float64
	Y        []float64
}

// Train fits a model predicting target from every other column of the
// cleaned table. Only rows whose target was actually observed train the
// model; sentinel-filled rows are what it later predicts for.
func Train(t *dataset.Table, target string, k int) (*Model, error) {
	if !t.HasColumn(target) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("target column %q not in dataset", target))
	}
	if k < 1 {
		k = DefaultNeighbors
	}

	features := make([]string, 0, len(t.Columns())-1)
	for _, column := range t.Columns() {
		if column != target && column != target+janitor.ObservedSuffix {
			features = append(features, column)
		}
	}

	m := &Model{K: k, Target: target, Features: features}
	observedColumn := target + janitor.ObservedSuffix

	for _, num := range t.Indexes() {
		if !targetObserved(t, num, target, observedColumn) {
			continue
		}
		x, err := featureVector(t, num, features)
		if err != nil {
			return nil, err
		}
		m.X = append(m.X, x)
		m.Y = append(m.Y, t.Value(num, target).Num())
	}

	if len(m.X) == 0 {
		return nil, apperrors.NewBadRequestError("no rows with an observed target to train on")
	}
	return m, nil
}

// Predict returns the distance-weighted value of the k nearest training
// rows. An exact neighbour wins outright.
func (m *Model) Predict(x []float64) float64 {
	type neighbor struct {
		dist  float64
		value float64
	}

	nearest := make([]neighbor, 0, m.K)
	for i, row := range m.X {
		d := euclidean(x, row)
		if d == 0 {
			return m.Y[i]
		}
		if len(nearest) < m.K {
			nearest = append(nearest, neighbor{d, m.Y[i]})
			continue
		}
		worst := 0
		for j := 1; j < len(nearest); j++ {
			if nearest[j].dist > nearest[worst].dist {
				worst = j
			}
		}
		if d < nearest[worst].dist {
			nearest[worst] = neighbor{d, m.Y[i]}
		}
	}

	var weighted, weights float64
	for _, n := range nearest {
		w := 1 / n.dist
		weighted += w * n.value
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return weighted / weights
}

// PredictTable predicts the target for every row, in index order
func (m *Model) PredictTable(t *dataset.Table) ([]float64, error) {
	predictions := make([]float64, 0, t.Len())
	for _, num := range t.Indexes() {
		x, err := featureVector(t, num, m.Features)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, m.Predict(x))
	}
	return predictions, nil
}

// Score returns the fraction of observed-target rows the model predicts
// exactly (classifier accuracy over the training signal)
func (m *Model) Score(t *dataset.Table) (float64, error) {
	observedColumn := m.Target + janitor.ObservedSuffix
	var total, correct int
	for _, num := range t.Indexes() {
		if !targetObserved(t, num, m.Target, observedColumn) {
			continue
		}
		x, err := featureVector(t, num, m.Features)
		if err != nil {
			return 0, err
		}
		total++
		if m.Predict(x) == t.Value(num, m.Target).Num() {
			correct++
		}
	}
	if total == 0 {
		return 0, apperrors.NewBadRequestError("no observed rows to score against")
	}
	return float64(correct) / float64(total), nil
}

// Save persists the fitted model
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(m)
}

// Load reads a persisted model
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("model file %s", path))
		}
		return nil, err
	}
	defer f.Close()

	var m Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func targetObserved(t *dataset.Table, num int, target, observedColumn string) bool {
	if t.HasColumn(observedColumn) {
		return t.Value(num, observedColumn).Num() != 0
	}
	return t.Value(num, target).Num() != janitor.SentinelValue
}

func featureVector(t *dataset.Table, num int, features []string) ([]float64, error) {
	x := make([]float64, len(features))
	for i, feature := range features {
		cell := t.Value(num, feature)
		if cell.IsNull() || cell.Kind() == domain.KindString {
			return nil, apperrors.NewBadRequestError(
				fmt.Sprintf("column %q is not numeric; run the janitor before training", feature))
		}
		x[i] = cell.Num()
	}
	return x, nil
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
