// Package control turns interactive input tokens into engine commands.
// It is purely a producer: parsing happens on the control context and
// the resulting commands travel to the render context over the
// engine's command queue.
package control

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-synth/synth"
)

// Fixed C-major octave (C4..B4) plus the C5 scale top. Note IDs index
// this table, so repeating a pitch retriggers its voice instead of
// stacking a duplicate.
var noteTable = []struct {
	name string
	freq float32
}{
	{"c", 261.63},
	{"d", 293.66},
	{"e", 329.63},
	{"f", 349.23},
	{"g", 392.00},
	{"a", 440.00},
	{"b", 493.88},
	{"c5", 523.25},
}

// chordNotes are the note-table indices of the C major triad.
var chordNotes = [3]int{0, 2, 4}

// Action pairs a command with a control-side delay relative to the
// moment its input line was accepted. Timed sequences (SCALE steps)
// are scheduled wall-clock by the caller; note lengths themselves stay
// sample-accurate inside the engine.
type Action struct {
	At  time.Duration
	Cmd synth.Command
}

// Parser maps input lines to engine commands.
type Parser struct {
	sampleRate int
}

// NewParser creates a parser for the given engine sample rate.
func NewParser(sampleRate int) *Parser {
	if sampleRate <= 0 {
		sampleRate = synth.DefaultSampleRate
	}
	return &Parser{sampleRate: sampleRate}
}

func noteIndex(name string) int {
	for i, n := range noteTable {
		if n.name == name {
			return i
		}
	}
	return -1
}

func (p *Parser) noteOn(idx int, durationSamples uint64) synth.Command {
	return synth.Command{
		Kind:            synth.CmdNoteOn,
		NoteID:          idx,
		FrequencyHz:     noteTable[idx].freq,
		DurationSamples: durationSamples,
	}
}

func (p *Parser) durationSamples(text string) (uint64, error) {
	seconds, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid duration %q: must be positive", text)
	}
	return uint64(seconds * float64(p.sampleRate)), nil
}

// ParseLine maps one input line to scheduled commands. An empty line
// yields no actions. Malformed input is rejected here and never
// reaches the engine.
//
// Single tokens: note letters c..b hold a note until "s", "s" releases
// everything, "q" shuts down, digits 1..9 set the blend ratio to
// (digit-1)/8 (1 = pure additive, 9 = pure FM).
// Two tokens: "<letter> <seconds>" plays a duration-bound note,
// "CHORD <seconds>" a C-E-G triad, "SCALE <seconds>" eight sequential
// duration-bound notes spanning the octave.
func (p *Parser) ParseLine(line string) ([]Action, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 0:
		return nil, nil
	case 1:
		return p.parseSingle(strings.ToLower(fields[0]))
	case 2:
		return p.parseTimed(strings.ToLower(fields[0]), fields[1])
	}
	return nil, fmt.Errorf("unrecognized input %q", strings.TrimSpace(line))
}

func (p *Parser) parseSingle(tok string) ([]Action, error) {
	if idx := noteIndex(tok); idx >= 0 && tok != "c5" {
		return []Action{{Cmd: p.noteOn(idx, 0)}}, nil
	}
	switch tok {
	case "s":
		actions := make([]Action, 0, len(noteTable))
		for i := range noteTable {
			actions = append(actions, Action{Cmd: synth.Command{Kind: synth.CmdNoteOff, NoteID: i}})
		}
		return actions, nil
	case "q":
		return []Action{{Cmd: synth.Command{Kind: synth.CmdShutdown}}}, nil
	}
	if len(tok) == 1 && tok[0] >= '1' && tok[0] <= '9' {
		ratio := float32(tok[0]-'1') / 8
		return []Action{{Cmd: synth.Command{Kind: synth.CmdSetBlend, Blend: ratio}}}, nil
	}
	return nil, fmt.Errorf("unrecognized input %q", tok)
}

func (p *Parser) parseTimed(tok string, durText string) ([]Action, error) {
	dur, err := p.durationSamples(durText)
	if err != nil {
		return nil, err
	}
	switch tok {
	case "chord":
		actions := make([]Action, 0, len(chordNotes))
		for _, idx := range chordNotes {
			actions = append(actions, Action{Cmd: p.noteOn(idx, dur)})
		}
		return actions, nil
	case "scale":
		step := time.Duration(float64(dur) / float64(p.sampleRate) * float64(time.Second))
		actions := make([]Action, 0, len(noteTable))
		for i := range noteTable {
			actions = append(actions, Action{At: time.Duration(i) * step, Cmd: p.noteOn(i, dur)})
		}
		return actions, nil
	}
	if idx := noteIndex(tok); idx >= 0 && tok != "c5" {
		return []Action{{Cmd: p.noteOn(idx, dur)}}, nil
	}
	return nil, fmt.Errorf("unrecognized input %q", tok)
}

// ParseEnvelope parses the "attack decay sustain release" sub-prompt
// line (seconds, seconds, level, seconds) into a SetEnvelope command.
func (p *Parser) ParseEnvelope(line string) (synth.Command, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return synth.Command{}, fmt.Errorf("expected 4 values (attack decay sustain release), got %d", len(fields))
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return synth.Command{}, fmt.Errorf("invalid envelope value %q: %w", f, err)
		}
		if v < 0 {
			return synth.Command{}, fmt.Errorf("invalid envelope value %q: must be >= 0", f)
		}
		vals[i] = v
	}
	if vals[2] > 1 {
		return synth.Command{}, fmt.Errorf("sustain level %v out of range [0,1]", vals[2])
	}
	return synth.Command{
		Kind: synth.CmdSetEnvelope,
		Envelope: synth.EnvelopeParams{
			Attack:  float32(vals[0]),
			Decay:   float32(vals[1]),
			Sustain: float32(vals[2]),
			Release: float32(vals[3]),
		},
	}, nil
}

// ParseFilter parses the "cutoff resonance" sub-prompt line into a
// SetFilter command.
func (p *Parser) ParseFilter(line string) (synth.Command, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return synth.Command{}, fmt.Errorf("expected 2 values (cutoff resonance), got %d", len(fields))
	}
	cutoff, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return synth.Command{}, fmt.Errorf("invalid cutoff %q: %w", fields[0], err)
	}
	nyquist := float64(p.sampleRate) / 2
	if cutoff <= 0 || cutoff >= nyquist {
		return synth.Command{}, fmt.Errorf("cutoff %v out of range (0, %v)", cutoff, nyquist)
	}
	resonance, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return synth.Command{}, fmt.Errorf("invalid resonance %q: %w", fields[1], err)
	}
	if resonance < 0 {
		return synth.Command{}, fmt.Errorf("resonance %v must be >= 0", resonance)
	}
	return synth.Command{
		Kind: synth.CmdSetFilter,
		Filter: synth.FilterParams{
			CutoffHz:  float32(cutoff),
			Resonance: float32(resonance),
		},
	}, nil
}

// NoteFrequency returns the frequency for a note letter (c..b, or c5),
// or an error for unknown names. Used by the offline tools.
func NoteFrequency(name string) (float32, error) {
	idx := noteIndex(strings.ToLower(name))
	if idx < 0 {
		return 0, fmt.Errorf("unknown note %q", name)
	}
	return noteTable[idx].freq, nil
}
