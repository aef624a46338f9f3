package main

import (
	"github.com/cwbudde/algo-synth/synth"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

func knobDefs(base *synth.Params) ([]knobDef, candidate) {
	defs := []knobDef{
		{Name: "output_gain", Min: 0.4, Max: 1.8},
		{Name: "blend", Min: 0.0, Max: 1.0},
		{Name: "envelope.attack", Min: 0.001, Max: 0.5},
		{Name: "envelope.decay", Min: 0.01, Max: 1.0},
		{Name: "envelope.sustain", Min: 0.0, Max: 1.0},
		{Name: "envelope.release", Min: 0.01, Max: 2.0},
		{Name: "filter.cutoff_hz", Min: 200, Max: 20000},
		{Name: "filter.resonance", Min: 0.0, Max: 1.0},
	}
	vals := []float64{
		float64(base.OutputGain),
		float64(base.Blend),
		float64(base.Envelope.Attack),
		float64(base.Envelope.Decay),
		float64(base.Envelope.Sustain),
		float64(base.Envelope.Release),
		float64(base.Filter.CutoffHz),
		float64(base.Filter.Resonance),
	}
	for i := range vals {
		vals[i] = clamp(vals[i], defs[i].Min, defs[i].Max)
	}
	return defs, candidate{Vals: vals}
}

func applyCandidate(base *synth.Params, defs []knobDef, c candidate) *synth.Params {
	params := *base
	for i, def := range defs {
		v := c.Vals[i]
		switch def.Name {
		case "output_gain":
			params.OutputGain = float32(v)
		case "blend":
			params.Blend = float32(v)
		case "envelope.attack":
			params.Envelope.Attack = float32(v)
		case "envelope.decay":
			params.Envelope.Decay = float32(v)
		case "envelope.sustain":
			params.Envelope.Sustain = float32(v)
		case "envelope.release":
			params.Envelope.Release = float32(v)
		case "filter.cutoff_hz":
			params.Filter.CutoffHz = float32(v)
		case "filter.resonance":
			params.Filter.Resonance = float32(v)
		}
	}
	return &params
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
