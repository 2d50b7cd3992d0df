package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "single value", values: []float64{42}, want: 42},
		{name: "simple average", values: []float64{10, 20, 30}, want: 20},
		{name: "negative values", values: []float64{-10, 10}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mean(tt.values), 1e-9)
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "single sample", values: []float64{5}, want: 0},
		{name: "identical values", values: []float64{3, 3, 3, 3}, want: 0},
		{name: "known spread", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, StdDev(tt.values), 1e-9)
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "odd count", values: []float64{9, 1, 5}, want: 5},
		{name: "even count", values: []float64{1, 2, 3, 4}, want: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Median(tt.values), 1e-9)
		})
	}

	t.Run("does not mutate input", func(t *testing.T) {
		values := []float64{3, 1, 2}
		Median(values)
		assert.Equal(t, []float64{3, 1, 2}, values)
	})
}

func TestQuartile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	assert.InDelta(t, 20.0, Quartile(values, 0.25), 1e-9)
	assert.InDelta(t, 30.0, Quartile(values, 0.5), 1e-9)
	assert.InDelta(t, 40.0, Quartile(values, 0.75), 1e-9)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.42, Clamp01(0.42))
}

func TestRegularityConfidence(t *testing.T) {
	t.Run("perfectly regular intervals score 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, RegularityConfidence([]float64{30, 30, 30, 30}), 1e-9)
	})

	t.Run("irregular intervals score lower", func(t *testing.T) {
		regular := RegularityConfidence([]float64{30, 30, 30})
		jittery := RegularityConfidence([]float64{10, 50, 30})
		assert.Greater(t, regular, jittery)
	})

	t.Run("empty intervals score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, RegularityConfidence(nil))
	})
}

func TestSampleBonus(t *testing.T) {
	assert.InDelta(t, 0.5, SampleBonus(6, 12), 1e-9)
	assert.Equal(t, 1.0, SampleBonus(12, 12))
	assert.Equal(t, 1.0, SampleBonus(20, 12))
	assert.Equal(t, 0.0, SampleBonus(5, 0))
}
