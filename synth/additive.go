package synth

import "math"

// NumHarmonics is the size of the additive oscillator bank.
const NumHarmonics = 64

// AdditiveEngine sums sine harmonics of a fundamental with a fixed 1/k
// amplitude falloff. Each harmonic keeps its own phase accumulator,
// wrapped into [0, 2pi) every sample. Harmonics at or above Nyquist
// get zero amplitude so they cannot alias.
type AdditiveEngine struct {
	sampleRate int
	phases     [NumHarmonics]float32
	incs       [NumHarmonics]float32
	amps       [NumHarmonics]float32
	norm       float32
}

func (a *AdditiveEngine) init(sampleRate int, fundamentalHz float32) {
	a.sampleRate = sampleRate
	for k := range a.phases {
		a.phases[k] = 0
	}
	a.setFrequency(fundamentalHz)
}

func (a *AdditiveEngine) setFrequency(fundamentalHz float32) {
	nyquist := 0.5 * float32(a.sampleRate)
	var ampSum float32
	for k := 0; k < NumHarmonics; k++ {
		freq := fundamentalHz * float32(k+1)
		if freq >= nyquist {
			a.incs[k] = 0
			a.amps[k] = 0
			continue
		}
		a.incs[k] = twoPi * freq / float32(a.sampleRate)
		a.amps[k] = 1 / float32(k+1)
		ampSum += a.amps[k]
	}
	if ampSum > 0 {
		a.norm = 1 / ampSum
	} else {
		a.norm = 0
	}
}

// next produces one sample, the normalized harmonic sum.
func (a *AdditiveEngine) next() float32 {
	var sum float32
	for k := 0; k < NumHarmonics; k++ {
		if a.amps[k] == 0 {
			continue
		}
		sum += a.amps[k] * float32(math.Sin(float64(a.phases[k])))
		p := a.phases[k] + a.incs[k]
		if p >= twoPi {
			p -= twoPi
		}
		a.phases[k] = p
	}
	return sum * a.norm
}
