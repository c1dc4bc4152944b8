package telemetry

import (
	"math"
	"testing"
)

func TestComputeFieldStats(t *testing.T) {
	values := []float64{0.5, -0.2, 1.0, 0.1, -0.4, 0.3, 0.9, 0.7, 0.2, 0.6}
	fs, _ := ComputeFieldStats(values, 0, nil)

	if fs.MinTemp != -0.4 {
		t.Errorf("min = %v, want -0.4", fs.MinTemp)
	}
	if fs.MaxTemp != 1.0 {
		t.Errorf("max = %v, want 1.0", fs.MaxTemp)
	}
	if math.Abs(fs.MeanTemp-0.37) > 1e-12 {
		t.Errorf("mean = %v, want 0.37", fs.MeanTemp)
	}
	if fs.IceCells != 2 {
		t.Errorf("ice cells = %d, want 2", fs.IceCells)
	}
	if math.Abs(fs.IceFraction-0.2) > 1e-12 {
		t.Errorf("ice fraction = %v, want 0.2", fs.IceFraction)
	}
	if !(fs.MinTemp <= fs.P10Temp && fs.P10Temp <= fs.P50Temp && fs.P50Temp <= fs.P90Temp && fs.P90Temp <= fs.MaxTemp) {
		t.Errorf("quantiles out of order: %+v", fs)
	}
}

func TestComputeFieldStatsDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeFieldStats(values, 0, nil)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was modified: %v", values)
	}
}

func TestComputeFieldStatsUniform(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 5
	}
	fs, _ := ComputeFieldStats(values, 0, nil)
	for name, v := range map[string]float64{
		"min": fs.MinTemp, "mean": fs.MeanTemp, "max": fs.MaxTemp,
		"p10": fs.P10Temp, "p50": fs.P50Temp, "p90": fs.P90Temp,
	} {
		if v != 5 {
			t.Errorf("%s = %v, want 5", name, v)
		}
	}
	if fs.IceCells != 0 {
		t.Errorf("ice cells = %d, want 0", fs.IceCells)
	}
}

func TestComputeFieldStatsFreezingIsStrict(t *testing.T) {
	fs, _ := ComputeFieldStats([]float64{0, 0, -1e-12, 1}, 0, nil)
	if fs.IceCells != 1 {
		t.Errorf("ice cells = %d, want 1 (cells at exactly 0 are not ice)", fs.IceCells)
	}
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	fs, _ := ComputeFieldStats(nil, 0, nil)
	if fs != (FieldStats{}) {
		t.Errorf("empty field should return zero stats, got %+v", fs)
	}
}

func TestComputeFieldStatsReusesScratch(t *testing.T) {
	scratch := make([]float64, 0, 16)
	_, got := ComputeFieldStats([]float64{1, 2, 3}, 0, scratch)
	if cap(got) != 16 {
		t.Errorf("scratch not reused, cap=%d", cap(got))
	}
}

func TestTotalHeat(t *testing.T) {
	if got := TotalHeat([]float64{1.5, -0.5, 2}); got != 3 {
		t.Errorf("TotalHeat = %v, want 3", got)
	}
	fs, _ := ComputeFieldStats([]float64{1.5, -0.5, 2}, 0, nil)
	if fs.TotalHeat != 3 {
		t.Errorf("FieldStats.TotalHeat = %v, want 3", fs.TotalHeat)
	}
}
