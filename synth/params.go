package synth

// Params hold the shaping defaults applied to voices at creation
// time. The render context owns the live copy; SetEnvelope/SetFilter
// commands change what future voices are created with, while SetBlend
// additionally retargets voices that are already sounding.
type Params struct {
	OutputGain float32
	Blend      float32
	Envelope   EnvelopeParams
	Filter     FilterParams
	FM         FMParams
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		OutputGain: 1.0,
		Blend:      0.5,
		Envelope:   EnvelopeParams{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.2},
		Filter:     FilterParams{CutoffHz: 20000, Resonance: 0},
		FM:         DefaultFMParams(),
	}
}
