package synth

// EnvelopeStage enumerates the ADSR states. StageIdle is terminal; a
// voice whose envelope is idle no longer sounds and its slot can be
// reclaimed.
type EnvelopeStage uint8

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s EnvelopeStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "unknown"
}

// EnvelopeParams hold the ADSR durations in seconds and the sustain
// level in [0,1].
type EnvelopeParams struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

func (p EnvelopeParams) sanitized() EnvelopeParams {
	if p.Attack < 0 {
		p.Attack = 0
	}
	if p.Decay < 0 {
		p.Decay = 0
	}
	if p.Release < 0 {
		p.Release = 0
	}
	p.Sustain = clampf(p.Sustain, 0, 1)
	return p
}

// Envelope is a per-voice ADSR amplitude state machine with linear
// ramps. Release always starts from the amplitude at release time, so
// a NoteOff during attack or decay stays continuous. A retriggered
// attack likewise ramps from the current amplitude.
type Envelope struct {
	attackSamples  uint64
	decaySamples   uint64
	releaseSamples uint64
	sustain        float32

	stage       EnvelopeStage
	pos         uint64
	value       float32
	attackFrom  float32
	releaseFrom float32
}

func (e *Envelope) init(sampleRate int, p EnvelopeParams) {
	p = p.sanitized()
	fs := float64(sampleRate)
	e.attackSamples = uint64(float64(p.Attack) * fs)
	e.decaySamples = uint64(float64(p.Decay) * fs)
	e.releaseSamples = uint64(float64(p.Release) * fs)
	e.sustain = p.Sustain
	e.stage = StageIdle
	e.pos = 0
	e.value = 0
	e.attackFrom = 0
	e.releaseFrom = 0
}

func (e *Envelope) noteOn() {
	e.attackFrom = e.value
	e.stage = StageAttack
	e.pos = 0
}

func (e *Envelope) noteOff() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.releaseFrom = e.value
	e.stage = StageRelease
	e.pos = 0
}

// next advances the envelope by one sample and returns the amplitude.
func (e *Envelope) next() float32 {
	switch e.stage {
	case StageAttack:
		e.pos++
		if e.pos >= e.attackSamples {
			e.stage = StageDecay
			e.pos = 0
			e.value = 1
		} else {
			t := float32(e.pos) / float32(e.attackSamples)
			e.value = e.attackFrom + (1-e.attackFrom)*t
		}
	case StageDecay:
		e.pos++
		if e.pos >= e.decaySamples {
			e.stage = StageSustain
			e.value = e.sustain
		} else {
			t := float32(e.pos) / float32(e.decaySamples)
			e.value = 1 - (1-e.sustain)*t
		}
	case StageSustain:
		e.value = e.sustain
	case StageRelease:
		e.pos++
		if e.pos >= e.releaseSamples {
			e.stage = StageIdle
			e.value = 0
		} else {
			t := float32(e.pos) / float32(e.releaseSamples)
			e.value = e.releaseFrom * (1 - t)
		}
	case StageIdle:
		e.value = 0
	}
	return e.value
}

// Stage reports the current ADSR state.
func (e *Envelope) Stage() EnvelopeStage {
	return e.stage
}
