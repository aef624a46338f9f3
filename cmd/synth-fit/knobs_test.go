package main

import (
	"testing"

	"github.com/cwbudde/algo-synth/synth"
)

func TestFromNormalizedMapsBounds(t *testing.T) {
	defs, _ := knobDefs(synth.NewDefaultParams())

	zeros := make([]float64, len(defs))
	ones := make([]float64, len(defs))
	for i := range ones {
		ones[i] = 1
	}

	lo := fromNormalized(zeros, defs)
	hi := fromNormalized(ones, defs)
	for i, d := range defs {
		if lo.Vals[i] != d.Min {
			t.Fatalf("%s: normalized 0 gave %v, want %v", d.Name, lo.Vals[i], d.Min)
		}
		if hi.Vals[i] != d.Max {
			t.Fatalf("%s: normalized 1 gave %v, want %v", d.Name, hi.Vals[i], d.Max)
		}
	}
}

func TestFromNormalizedClampsOutOfRange(t *testing.T) {
	defs, _ := knobDefs(synth.NewDefaultParams())
	pos := make([]float64, len(defs))
	for i := range pos {
		pos[i] = 2.5
	}
	c := fromNormalized(pos, defs)
	for i, d := range defs {
		if c.Vals[i] != d.Max {
			t.Fatalf("%s: expected clamp to max %v, got %v", d.Name, d.Max, c.Vals[i])
		}
	}
}

func TestApplyCandidateSetsParams(t *testing.T) {
	base := synth.NewDefaultParams()
	defs, _ := knobDefs(base)
	vals := make([]float64, len(defs))
	for i, d := range defs {
		switch d.Name {
		case "blend":
			vals[i] = 0.9
		case "envelope.attack":
			vals[i] = 0.2
		case "filter.cutoff_hz":
			vals[i] = 5000
		default:
			vals[i] = clamp(0.5, d.Min, d.Max)
		}
	}
	params := applyCandidate(base, defs, candidate{Vals: vals})
	if params.Blend != 0.9 {
		t.Fatalf("blend not applied: %v", params.Blend)
	}
	if params.Envelope.Attack != 0.2 {
		t.Fatalf("attack not applied: %v", params.Envelope.Attack)
	}
	if params.Filter.CutoffHz != 5000 {
		t.Fatalf("cutoff not applied: %v", params.Filter.CutoffHz)
	}
	// The base must stay untouched.
	if base.Blend == 0.9 && base.Envelope.Attack == 0.2 {
		t.Fatalf("base params mutated")
	}
}
