package synth

import (
	"math"
	"math/cmplx"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func maxAbs(samples []float32) float64 {
	var m float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		if v > m {
			m = v
		}
	}
	return m
}

// magnitudeSpectrum returns Hann-windowed FFT magnitudes of the first
// fftSize samples.
func magnitudeSpectrum(t *testing.T, samples []float32, fftSize int) []float64 {
	t.Helper()
	if len(samples) < fftSize {
		t.Fatalf("need %d samples for spectrum, have %d", fftSize, len(samples))
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}
	buf := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		buf[i] = float64(samples[i]) * w
	}
	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)
	mags := make([]float64, len(spec))
	for k := range spec {
		mags[k] = cmplx.Abs(spec[k])
	}
	return mags
}

// bandEnergy sums spectrum magnitudes between loHz and hiHz.
func bandEnergy(mags []float64, sampleRate int, fftSize int, loHz float64, hiHz float64) float64 {
	binHz := float64(sampleRate) / float64(fftSize)
	lo := int(loHz / binHz)
	hi := int(hiHz / binHz)
	if lo < 0 {
		lo = 0
	}
	if hi >= len(mags) {
		hi = len(mags) - 1
	}
	var sum float64
	for k := lo; k <= hi; k++ {
		sum += mags[k]
	}
	return sum
}

// renderSamples collects n samples from a per-sample generator.
func renderSamples(n int, next func() float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = next()
	}
	return out
}
