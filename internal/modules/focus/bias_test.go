package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExponent_Bounds(t *testing.T) {
	assert.InDelta(t, ExponentMin, Exponent(0), 1e-9)
	assert.InDelta(t, 1.8, Exponent(0.5), 1e-9)
	assert.InDelta(t, ExponentMax, Exponent(1), 1e-9)

	// Out-of-range focus is clamped, never extrapolated.
	assert.InDelta(t, ExponentMin, Exponent(-0.3), 1e-9)
	assert.InDelta(t, ExponentMax, Exponent(1.7), 1e-9)
}

func TestExponent_FasterBelowKnee(t *testing.T) {
	lowSlope := Exponent(0.4) - Exponent(0.3)
	highSlope := Exponent(0.8) - Exponent(0.7)
	assert.Greater(t, lowSlope, highSlope)
}

func TestBiasedRatio_MonotoneInFocus(t *testing.T) {
	// For a fixed risk ratio > 1 the biased ratio must never decrease as
	// focus rises from 0 to 1, including across the extreme-compression
	// gate at 0.7.
	for _, ratio := range []float64{1.1, 1.5, 2.0, 2.5, 4.0} {
		prev := BiasedRatio(ratio, 0)
		for f := 0.01; f <= 1.0; f += 0.01 {
			cur := BiasedRatio(ratio, f)
			assert.GreaterOrEqualf(t, cur+1e-12, prev,
				"ratio %.2f: biased ratio decreased between focus %.2f and %.2f", ratio, f-0.01, f)
			prev = cur
		}
	}
}

func TestBiasedRatio_MonotoneInRatio(t *testing.T) {
	for _, f := range []float64{0, 0.2, 0.5, 0.7, 0.71, 0.9, 1.0} {
		prev := BiasedRatio(0.01, f)
		for r := 0.05; r <= 3.0; r += 0.05 {
			cur := BiasedRatio(r, f)
			assert.GreaterOrEqualf(t, cur+1e-12, prev,
				"focus %.2f: biased ratio decreased between ratio %.2f and %.2f", f, r-0.05, r)
			prev = cur
		}
	}
}

func TestBiasedRatio_ZeroFocusIsLinear(t *testing.T) {
	// With focus 0 the exponent is 1, so ratios at or above the low-ratio
	// threshold pass through unchanged.
	assert.InDelta(t, 1.0, BiasedRatio(1.0, 0), 1e-9)
	assert.InDelta(t, 1.7, BiasedRatio(1.7, 0), 1e-9)
	assert.InDelta(t, MaxRatio, BiasedRatio(9.0, 0), 1e-9)
}

func TestBiasedRatio_ClampsInput(t *testing.T) {
	assert.Equal(t, BiasedRatio(MinRatio, 0.6), BiasedRatio(0.0001, 0.6))
	assert.Equal(t, BiasedRatio(MaxRatio, 0.6), BiasedRatio(50, 0.6))
}

func TestBiasedRatio_LowRatioCompression(t *testing.T) {
	// A unit well below baseline keeps a meaningful share: the biased
	// value sits above the raw power-law value.
	raw := 0.2 // clamped ratio
	biased := BiasedRatio(raw, 0.5)
	assert.Greater(t, biased, 0.2*0.2) // far above raw^exp
	assert.Less(t, biased, 1.0)
}

func TestBiasedRatio_ExtremeCompressionLimitsGrowth(t *testing.T) {
	// Past the focus gate, high-ratio growth is halved: the gain from
	// focus 0.7 to 1.0 must be at most half of the uncompressed gain.
	ratio := 2.5
	atGate := BiasedRatio(ratio, ExtremeFocusThreshold)
	atMax := BiasedRatio(ratio, 1.0)

	uncompressedAtMax := 6.25 // 2.5^2 with no compression
	uncompressedGain := uncompressedAtMax - atGate
	assert.LessOrEqual(t, atMax-atGate, uncompressedGain*ExtremeCompression+1e-9)
	assert.GreaterOrEqual(t, atMax, atGate)
}

func TestBiasedRatio_Idempotent(t *testing.T) {
	a := BiasedRatio(1.37, 0.83)
	b := BiasedRatio(1.37, 0.83)
	assert.Equal(t, a, b)
}
