package synth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// FilterParams hold the low-pass cutoff in Hz and the resonance in
// [0,1]. Out-of-range values are clamped when applied.
type FilterParams struct {
	CutoffHz  float32
	Resonance float32
}

const (
	minCutoffHz  = 20.0
	maxResonance = 1.0
)

// LowPassFilter is a two-pole low-pass (RBJ biquad, direct form I).
// Coefficients are recomputed only when parameters change; resonance
// is clamped before the coefficient computation, which keeps the poles
// inside the unit circle for any input.
type LowPassFilter struct {
	sampleRate int
	cutoff     float32
	resonance  float32

	b0, b1, b2 float32
	a1, a2     float32
	x1, x2     float32
	y1, y2     float32
}

func (f *LowPassFilter) init(sampleRate int, p FilterParams) {
	f.sampleRate = sampleRate
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
	f.cutoff = -1 // force coefficient computation
	f.setParams(p)
}

func (f *LowPassFilter) setParams(p FilterParams) {
	nyquist := 0.5 * float32(f.sampleRate)
	cutoff := clampf(p.CutoffHz, minCutoffHz, 0.98*nyquist)
	res := clampf(p.Resonance, 0, maxResonance)
	if cutoff == f.cutoff && res == f.resonance {
		return
	}
	f.cutoff = cutoff
	f.resonance = res

	q := 1.0 + float64(res)*10.0
	w0 := 2 * math.Pi * float64(cutoff) / float64(f.sampleRate)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	f.b0 = float32((1 - cosW0) / 2 / a0)
	f.b1 = float32((1 - cosW0) / a0)
	f.b2 = f.b0
	f.a1 = float32(-2 * cosW0 / a0)
	f.a2 = float32((1 - alpha) / a0)
}

// process filters one sample.
func (f *LowPassFilter) process(x float32) float32 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	y = float32(dspcore.FlushDenormals(float64(y)))
	f.x2 = f.x1
	f.x1 = x
	f.y2 = f.y1
	f.y1 = y
	return y
}
