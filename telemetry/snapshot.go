package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a plate's temperature field at one point in a run.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	NX            int     `json:"nx"`
	NY            int     `json:"ny"`
	LengthX       float64 `json:"length_x"`
	LengthY       float64 `json:"length_y"`
	FreezingPoint float64 `json:"freezing_point"`

	Iteration int    `json:"iteration"`
	Droplets  int    `json:"droplets"`
	Reason    string `json:"reason,omitempty"`

	// Row-major temperatures, NX rows of NY values.
	Temperatures []float64 `json:"temperatures"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// Field returns the temperatures as an NX by NY matrix copy.
func (s *Snapshot) Field() *mat.Dense {
	data := make([]float64, len(s.Temperatures))
	copy(data, s.Temperatures)
	return mat.NewDense(s.NX, s.NY, data)
}

// IceCells counts cells strictly below the freezing point.
func (s *Snapshot) IceCells() int {
	n := 0
	for _, t := range s.Temperatures {
		if t < s.FreezingPoint {
			n++
		}
	}
	return n
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Iteration)
	switch {
	case snapshot.Bookmark != nil:
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Iteration, sanitized)
	case snapshot.Reason != "":
		name = fmt.Sprintf("snapshot_%d_final", snapshot.Iteration)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	if snapshot.NX < 1 || snapshot.NY < 1 || len(snapshot.Temperatures) != snapshot.NX*snapshot.NY {
		return nil, fmt.Errorf("snapshot field has %d values for a %dx%d grid",
			len(snapshot.Temperatures), snapshot.NX, snapshot.NY)
	}

	return &snapshot, nil
}
