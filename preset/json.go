// Package preset loads and saves synthesizer parameter files.
package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-synth/synth"
)

// File is the JSON schema for synth presets. All fields are optional;
// absent fields keep their defaults.
type File struct {
	OutputGain *float32        `json:"output_gain"`
	Blend      *float32        `json:"blend"`
	Envelope   *EnvelopeFields `json:"envelope"`
	Filter     *FilterFields   `json:"filter"`
	FM         *FMFields       `json:"fm"`
}

// EnvelopeFields is a partial ADSR override in a preset file.
type EnvelopeFields struct {
	Attack  *float32 `json:"attack"`
	Decay   *float32 `json:"decay"`
	Sustain *float32 `json:"sustain"`
	Release *float32 `json:"release"`
}

// FilterFields is a partial low-pass override in a preset file.
type FilterFields struct {
	CutoffHz  *float32 `json:"cutoff_hz"`
	Resonance *float32 `json:"resonance"`
}

// FMFields is a partial FM operator bank override in a preset file.
type FMFields struct {
	Ratios   []float32 `json:"ratios"`
	Indices  []float32 `json:"indices"`
	Feedback *float32  `json:"feedback"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*synth.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := synth.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *synth.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.OutputGain != nil {
		if *f.OutputGain <= 0 {
			return fmt.Errorf("output_gain must be > 0")
		}
		dst.OutputGain = *f.OutputGain
	}
	if f.Blend != nil {
		if *f.Blend < 0 || *f.Blend > 1 {
			return fmt.Errorf("blend must be in [0,1]")
		}
		dst.Blend = *f.Blend
	}

	if f.Envelope != nil {
		e := f.Envelope
		if e.Attack != nil {
			if *e.Attack < 0 {
				return fmt.Errorf("envelope.attack must be >= 0")
			}
			dst.Envelope.Attack = *e.Attack
		}
		if e.Decay != nil {
			if *e.Decay < 0 {
				return fmt.Errorf("envelope.decay must be >= 0")
			}
			dst.Envelope.Decay = *e.Decay
		}
		if e.Sustain != nil {
			if *e.Sustain < 0 || *e.Sustain > 1 {
				return fmt.Errorf("envelope.sustain must be in [0,1]")
			}
			dst.Envelope.Sustain = *e.Sustain
		}
		if e.Release != nil {
			if *e.Release < 0 {
				return fmt.Errorf("envelope.release must be >= 0")
			}
			dst.Envelope.Release = *e.Release
		}
	}

	if f.Filter != nil {
		if f.Filter.CutoffHz != nil {
			if *f.Filter.CutoffHz <= 0 {
				return fmt.Errorf("filter.cutoff_hz must be > 0")
			}
			dst.Filter.CutoffHz = *f.Filter.CutoffHz
		}
		if f.Filter.Resonance != nil {
			if *f.Filter.Resonance < 0 {
				return fmt.Errorf("filter.resonance must be >= 0")
			}
			dst.Filter.Resonance = *f.Filter.Resonance
		}
	}

	if f.FM != nil {
		if f.FM.Ratios != nil {
			if len(f.FM.Ratios) != synth.NumOperators {
				return fmt.Errorf("fm.ratios must have %d entries, got %d", synth.NumOperators, len(f.FM.Ratios))
			}
			for i, r := range f.FM.Ratios {
				if r <= 0 {
					return fmt.Errorf("fm.ratios[%d] must be > 0", i)
				}
				dst.FM.Ratios[i] = r
			}
		}
		if f.FM.Indices != nil {
			if len(f.FM.Indices) != synth.NumOperators {
				return fmt.Errorf("fm.indices must have %d entries, got %d", synth.NumOperators, len(f.FM.Indices))
			}
			for i, m := range f.FM.Indices {
				if m < 0 {
					return fmt.Errorf("fm.indices[%d] must be >= 0", i)
				}
				dst.FM.Indices[i] = m
			}
		}
		if f.FM.Feedback != nil {
			if *f.FM.Feedback < 0 {
				return fmt.Errorf("fm.feedback must be >= 0")
			}
			dst.FM.Feedback = *f.FM.Feedback
		}
	}
	return nil
}

// SaveJSON writes params as a fully populated preset file.
func SaveJSON(path string, p *synth.Params) error {
	if p == nil {
		return fmt.Errorf("nil params")
	}
	ratios := append([]float32(nil), p.FM.Ratios[:]...)
	indices := append([]float32(nil), p.FM.Indices[:]...)
	f := File{
		OutputGain: &p.OutputGain,
		Blend:      &p.Blend,
		Envelope: &EnvelopeFields{
			Attack:  &p.Envelope.Attack,
			Decay:   &p.Envelope.Decay,
			Sustain: &p.Envelope.Sustain,
			Release: &p.Envelope.Release,
		},
		Filter: &FilterFields{
			CutoffHz:  &p.Filter.CutoffHz,
			Resonance: &p.Filter.Resonance,
		},
		FM: &FMFields{
			Ratios:   ratios,
			Indices:  indices,
			Feedback: &p.FM.Feedback,
		},
	}
	b, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
