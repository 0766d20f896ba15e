package validate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// reportTimeLayout names report files down to the second.
const reportTimeLayout = "20060102_150405"

// ErrNoSteps indicates a record built from an empty trajectory.
var ErrNoSteps = errors.New("validate: record needs at least one step")

// Record is one completed convergence run: configuration echo, the full
// metric trajectory, and the final verdict. Records are immutable after
// NewRecord.
type Record struct {
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Vocab     int           `json:"vocab"`
	Criteria  Criteria      `json:"criteria"`
	Steps     []StepMetrics `json:"steps"`
	Converged bool          `json:"converged"`
}

// NewRecord seals a trajectory into a record, applying the criteria to the
// final step.
func NewRecord(name string, vocab int, crit Criteria, steps []StepMetrics) (*Record, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	trajectory := make([]StepMetrics, len(steps))
	copy(trajectory, steps)

	return &Record{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Vocab:     vocab,
		Criteria:  crit,
		Steps:     trajectory,
		Converged: crit.Met(trajectory[len(trajectory)-1]),
	}, nil
}

// Final returns the last step of the trajectory.
func (r *Record) Final() StepMetrics {
	return r.Steps[len(r.Steps)-1]
}

// Save writes the record to dir as
// validation_report_<YYYYMMDD_HHMMSS>.json and returns the full path.
func (r *Record) Save(dir string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "validation_report_"+r.CreatedAt.Format(reportTimeLayout)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	return path, nil
}

// LoadRecord reads a previously saved report.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	return &r, nil
}
