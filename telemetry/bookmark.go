package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkRapidCooling BookmarkType = "rapid_cooling"
	BookmarkHalfCooled   BookmarkType = "half_cooled"
	BookmarkNearFreezing BookmarkType = "near_freezing"
	BookmarkFirstIce     BookmarkType = "first_ice"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Iteration   int          `csv:"iteration" json:"iteration"`
	Droplets    int          `csv:"droplets" json:"droplets"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"iteration", b.Iteration,
		"droplets", b.Droplets,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in a plate's cooling history.
// Threshold bookmarks fire once per run; rapid cooling fires whenever a
// sample's mean-temperature drop exceeds twice the rolling average.
type BookmarkDetector struct {
	// Rolling history of mean-temperature drops (circular buffer)
	drops       []float64
	historySize int
	historyIdx  int
	historyFull bool

	initial  float64
	freezing float64
	prevMean float64
	hasPrev  bool
	fired    map[BookmarkType]bool
}

// NewBookmarkDetector creates a detector for a plate starting at initial
// degrees with the given freezing point.
func NewBookmarkDetector(historySize int, initial, freezing float64) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		drops:       make([]float64, historySize),
		historySize: historySize,
		initial:     initial,
		freezing:    freezing,
		fired:       make(map[BookmarkType]bool),
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats IterationStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.hasPrev {
		drop := bd.prevMean - stats.MeanTemp
		if b := bd.checkRapidCooling(stats, drop); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		bd.addToHistory(drop)
	}
	bd.prevMean = stats.MeanTemp
	bd.hasPrev = true

	gap := bd.initial - bd.freezing
	if gap > 0 {
		if stats.MeanTemp <= bd.freezing+0.5*gap {
			bd.once(&bookmarks, BookmarkHalfCooled, stats,
				fmt.Sprintf("Mean temperature %.3f is halfway to freezing", stats.MeanTemp))
		}
		if stats.MinTemp <= bd.freezing+0.1*gap {
			bd.once(&bookmarks, BookmarkNearFreezing, stats,
				fmt.Sprintf("Coldest cell %.3f is within 10%% of freezing", stats.MinTemp))
		}
	}
	if stats.IceCells > 0 {
		bd.once(&bookmarks, BookmarkFirstIce, stats,
			fmt.Sprintf("%d cells frozen after %d droplets", stats.IceCells, stats.Droplets))
	}

	return bookmarks
}

func (bd *BookmarkDetector) once(out *[]Bookmark, typ BookmarkType, stats IterationStats, desc string) {
	if bd.fired[typ] {
		return
	}
	bd.fired[typ] = true
	*out = append(*out, Bookmark{
		Type:        typ,
		Iteration:   stats.Iteration,
		Droplets:    stats.Droplets,
		Description: desc,
	})
}

func (bd *BookmarkDetector) addToHistory(drop float64) {
	bd.drops[bd.historyIdx] = drop
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []float64 {
	if bd.historyFull {
		return bd.drops
	}
	return bd.drops[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkRapidCooling(stats IterationStats, drop float64) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, d := range history {
		total += d
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if drop > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkRapidCooling,
			Iteration:   stats.Iteration,
			Droplets:    stats.Droplets,
			Description: fmt.Sprintf("Mean dropped %.4f, %.1fx average (%.4f)", drop, drop/avg, avg),
		}
	}
	return nil
}
