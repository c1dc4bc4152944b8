package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IterationStats holds field statistics sampled after an iteration.
type IterationStats struct {
	WindowStart int `csv:"-"`
	Iteration   int `csv:"iteration"`

	// Spray activity since the previous sample
	Droplets int     `csv:"droplets"` // cumulative at sample time
	Applied  int     `csv:"applied"`
	Removed  float64 `csv:"removed"`
	Spilled  float64 `csv:"spilled"`

	// Temperature distribution
	FieldStats
}

// FieldStats summarizes a temperature field.
type FieldStats struct {
	MinTemp  float64 `csv:"min_temp"`
	MeanTemp float64 `csv:"mean_temp"`
	MaxTemp  float64 `csv:"max_temp"`
	P10Temp  float64 `csv:"p10_temp"`
	P50Temp  float64 `csv:"p50_temp"`
	P90Temp  float64 `csv:"p90_temp"`

	IceCells    int     `csv:"ice_cells"`
	IceFraction float64 `csv:"ice_fraction"`
	TotalHeat   float64 `csv:"total_heat"` // field sum
}

// ComputeFieldStats summarizes values; cells strictly below freezing count as ice.
// scratch is reused for the sorted copy when large enough and may be nil.
// Returns the zero value for an empty field.
func ComputeFieldStats(values []float64, freezing float64, scratch []float64) (FieldStats, []float64) {
	n := len(values)
	if n == 0 {
		return FieldStats{}, scratch
	}

	if cap(scratch) < n {
		scratch = make([]float64, n)
	}
	sorted := scratch[:n]
	copy(sorted, values)
	sort.Float64s(sorted)

	// Sorted ascending, so the ice cells form a prefix.
	ice := sort.SearchFloat64s(sorted, freezing)

	return FieldStats{
		MinTemp:     floats.Min(values),
		MeanTemp:    stat.Mean(values, nil),
		MaxTemp:     floats.Max(values),
		P10Temp:     stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50Temp:     stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90Temp:     stat.Quantile(0.90, stat.Empirical, sorted, nil),
		IceCells:    ice,
		IceFraction: float64(ice) / float64(n),
		TotalHeat:   TotalHeat(values),
	}, scratch
}

// TotalHeat returns the field sum.
func TotalHeat(values []float64) float64 {
	return floats.Sum(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s IterationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("iteration", s.Iteration),
		slog.Int("droplets", s.Droplets),
		slog.Int("applied", s.Applied),
		slog.Float64("removed", s.Removed),
		slog.Float64("spilled", s.Spilled),
		slog.Float64("min_temp", s.MinTemp),
		slog.Float64("mean_temp", s.MeanTemp),
		slog.Float64("max_temp", s.MaxTemp),
		slog.Float64("p10_temp", s.P10Temp),
		slog.Float64("p50_temp", s.P50Temp),
		slog.Float64("p90_temp", s.P90Temp),
		slog.Int("ice_cells", s.IceCells),
		slog.Float64("ice_fraction", s.IceFraction),
		slog.Float64("total_heat", s.TotalHeat),
	)
}

// LogStats logs the iteration stats using slog.
func (s IterationStats) LogStats() {
	slog.Info("stats",
		"iteration", s.Iteration,
		"droplets", s.Droplets,
		"applied", s.Applied,
		"removed", s.Removed,
		"spilled", s.Spilled,
		"min_temp", s.MinTemp,
		"mean_temp", s.MeanTemp,
		"max_temp", s.MaxTemp,
		"p50_temp", s.P50Temp,
		"total_heat", s.TotalHeat,
		"ice_cells", s.IceCells,
	)
}
