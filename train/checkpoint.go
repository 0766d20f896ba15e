package train

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// checkpointTimeLayout names checkpoint files down to the second.
const checkpointTimeLayout = "20060102_150405"

// Checkpoint is a full experiment-batch snapshot serialized to JSON.
type Checkpoint struct {
	CreatedAt time.Time `json:"created_at"`
	Results   []Result  `json:"results"`
}

// SaveCheckpoint writes results to dir as
// checkpoint_<YYYYMMDD_HHMMSS>.json, synchronously, and returns the path.
func SaveCheckpoint(dir string, results []Result) (string, error) {
	cp := Checkpoint{CreatedAt: time.Now().UTC(), Results: results}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "checkpoint_"+cp.CreatedAt.Format(checkpointTimeLayout)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	return path, nil
}

// LoadCheckpoint reads a previously saved checkpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}

	return &cp, nil
}
