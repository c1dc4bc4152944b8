package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/icing/config"
)

// RunSummary is the single-row record written when a run stops.
type RunSummary struct {
	Seed           int64   `csv:"seed"`
	Reason         string  `csv:"reason"`
	IceFormed      bool    `csv:"ice_formed"`
	Droplets       int     `csv:"droplets"`
	DropletsAtIce  int     `csv:"droplets_at_ice"`
	Iterations     int     `csv:"iterations"`
	IceCells       int     `csv:"ice_cells"`
	MinTemperature float64 `csv:"min_temp"`
	ElapsedMS      int64   `csv:"elapsed_ms"`
}

// CSVLog is one CSV file whose header is written with the first record.
type CSVLog struct {
	file          *os.File
	headerWritten bool
}

// CreateCSVLog creates or truncates the CSV file at path.
func CreateCSVLog(path string) (*CSVLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &CSVLog{file: f}, nil
}

// Write appends records, a slice of csv-tagged structs.
func (l *CSVLog) Write(records interface{}) error {
	if !l.headerWritten {
		if err := gocsv.Marshal(records, l.file); err != nil {
			return err
		}
		l.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, l.file)
}

// Close closes the file. It is safe to call on nil or twice.
func (l *CSVLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// OutputManager handles structured run output with CSV logging.
// A nil *OutputManager accepts every call and writes nothing.
type OutputManager struct {
	dir        string
	iterations *CSVLog
	perf       *CSVLog
	summary    *CSVLog
	bookmarks  *CSVLog
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		log  **CSVLog
	}{
		{"iterations.csv", &om.iterations},
		{"perf.csv", &om.perf},
		{"summary.csv", &om.summary},
		{"bookmarks.csv", &om.bookmarks},
	}
	for _, f := range files {
		l, err := CreateCSVLog(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.log = l
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteIteration appends a stats record to iterations.csv.
func (om *OutputManager) WriteIteration(stats IterationStats) error {
	if om == nil {
		return nil
	}
	if err := om.iterations.Write([]IterationStats{stats}); err != nil {
		return fmt.Errorf("writing iteration stats: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, iteration int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.Write([]PerfStatsCSV{stats.ToCSV(iteration)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteSummary writes the end-of-run record to summary.csv.
func (om *OutputManager) WriteSummary(s RunSummary) error {
	if om == nil {
		return nil
	}
	if err := om.summary.Write([]RunSummary{s}); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.Write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, l := range []*CSVLog{om.iterations, om.perf, om.summary, om.bookmarks} {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
