package synth

import "math"

// NumOperators is the size of the FM operator chain.
const NumOperators = 6

// FMParams fix the operator chain for a voice at creation time:
// per-operator frequency ratios (relative to the fundamental) and
// modulation indices, plus self-feedback on the top modulator.
type FMParams struct {
	Ratios   [NumOperators]float32
	Indices  [NumOperators]float32
	Feedback float32
}

// DefaultFMParams returns a mildly bright electric-piano style chain.
func DefaultFMParams() FMParams {
	return FMParams{
		Ratios:   [NumOperators]float32{1, 2, 3, 4, 5, 7},
		Indices:  [NumOperators]float32{1.4, 0.9, 0.6, 0.4, 0.25, 0.15},
		Feedback: 0.2,
	}
}

type fmOperator struct {
	ratio   float32
	index   float32
	inc     float32
	phase   float32
	prevOut float32
}

// FMEngine is a serial chain of sine operators. Operator 0 is the
// carrier; each operator's phase increment is perturbed by the next
// operator's output scaled by its own index. The top operator feeds
// its previous output back into itself, scaled by the feedback amount.
type FMEngine struct {
	sampleRate int
	feedback   float32
	ops        [NumOperators]fmOperator
}

func (f *FMEngine) init(sampleRate int, fundamentalHz float32, p FMParams) {
	f.sampleRate = sampleRate
	f.feedback = p.Feedback
	for i := range f.ops {
		f.ops[i] = fmOperator{ratio: p.Ratios[i], index: p.Indices[i]}
	}
	f.setFrequency(fundamentalHz)
}

func (f *FMEngine) setFrequency(fundamentalHz float32) {
	for i := range f.ops {
		f.ops[i].inc = twoPi * fundamentalHz * f.ops[i].ratio / float32(f.sampleRate)
	}
}

// next produces one carrier sample.
func (f *FMEngine) next() float32 {
	var mod float32
	for i := NumOperators - 1; i >= 0; i-- {
		op := &f.ops[i]
		var pert float32
		if i == NumOperators-1 {
			pert = f.feedback * op.prevOut
		} else {
			pert = op.index * mod
		}
		p := op.phase + op.inc + pert
		for p >= twoPi {
			p -= twoPi
		}
		for p < 0 {
			p += twoPi
		}
		op.phase = p
		out := float32(math.Sin(float64(p)))
		op.prevOut = out
		mod = out
	}
	return f.ops[0].prevOut
}
