package synth

import "sync/atomic"

// DefaultSampleRate is the output rate the engine is tuned for.
const DefaultSampleRate = 48000

const commandQueueCapacity = 256

// VoiceState is a diagnostic view of one active voice.
type VoiceState struct {
	NoteID      int
	FrequencyHz float32
	Stage       EnvelopeStage
}

// Snapshot is the per-block state view published by the render
// context. Snapshots are advisory: the buffer behind a snapshot is
// recycled after a few more blocks have been rendered, so readers
// should consume it promptly and must not mutate it.
type Snapshot struct {
	Clock        uint64
	ActiveVoices int
	Voices       []VoiceState
}

const snapshotRing = 4

// Synth is the polyphonic engine: a fixed pool of voices, a global
// sample clock and the command queue that feeds it. All state is
// mutated exclusively by the render context through Process; the
// control context reaches the engine only via the queue and the
// published Snapshot.
type Synth struct {
	sampleRate int
	params     Params
	voices     []Voice
	queue      *CommandQueue
	clock      uint64
	shutdown   bool
	mixGain    float32

	snaps   [snapshotRing]Snapshot
	snapIdx int
	snap    atomic.Pointer[Snapshot]
}

// NewSynth creates an engine with a preallocated pool of maxPolyphony
// voices. A nil params uses defaults.
func NewSynth(sampleRate int, maxPolyphony int, params *Params) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if maxPolyphony < 1 {
		maxPolyphony = 1
	}
	p := NewDefaultParams()
	if params != nil {
		*p = *params
	}
	s := &Synth{
		sampleRate: sampleRate,
		params:     *p,
		voices:     make([]Voice, maxPolyphony),
		queue:      NewCommandQueue(commandQueueCapacity),
		mixGain:    1 / float32(maxPolyphony),
	}
	for i := range s.snaps {
		s.snaps[i].Voices = make([]VoiceState, 0, maxPolyphony)
	}
	s.publishSnapshot()
	return s
}

// Queue returns the command queue. Only a single control goroutine may
// push to it.
func (s *Synth) Queue() *CommandQueue {
	return s.queue
}

// SampleRate reports the engine's output rate in Hz.
func (s *Synth) SampleRate() int {
	return s.sampleRate
}

// MaxPolyphony reports the voice pool capacity.
func (s *Synth) MaxPolyphony() int {
	return len(s.voices)
}

// ApplyCommand executes one command. It must be called from the render
// context only; it does bounded work and never allocates.
func (s *Synth) ApplyCommand(cmd Command) {
	switch cmd.Kind {
	case CmdNoteOn:
		s.noteOn(cmd.NoteID, cmd.FrequencyHz, cmd.DurationSamples)
	case CmdNoteOff:
		s.noteOff(cmd.NoteID)
	case CmdSetBlend:
		s.params.Blend = clampf(cmd.Blend, 0, 1)
		for i := range s.voices {
			if s.voices[i].active {
				s.voices[i].engine.setBlendRatio(s.params.Blend)
			}
		}
	case CmdSetEnvelope:
		s.params.Envelope = cmd.Envelope.sanitized()
	case CmdSetFilter:
		s.params.Filter = cmd.Filter
	case CmdShutdown:
		s.shutdown = true
		for i := range s.voices {
			if s.voices[i].active {
				s.voices[i].release()
			}
		}
	}
}

func (s *Synth) noteOn(noteID int, frequencyHz float32, durationSamples uint64) {
	if frequencyHz <= 0 {
		return
	}
	for i := range s.voices {
		v := &s.voices[i]
		if v.active && v.noteID == noteID {
			v.retrigger(s.clock, durationSamples)
			return
		}
	}
	for i := range s.voices {
		if !s.voices[i].active {
			s.voices[i].start(s.sampleRate, noteID, frequencyHz, s.clock, durationSamples, &s.params)
			return
		}
	}
	// Pool is full: steal the longest-running voice and override its
	// state immediately, so NoteOn never silently fails.
	oldest := 0
	for i := 1; i < len(s.voices); i++ {
		if s.voices[i].createdAt < s.voices[oldest].createdAt {
			oldest = i
		}
	}
	s.voices[oldest].start(s.sampleRate, noteID, frequencyHz, s.clock, durationSamples, &s.params)
}

func (s *Synth) noteOff(noteID int) {
	for i := range s.voices {
		if s.voices[i].active && s.voices[i].noteID == noteID {
			s.voices[i].release()
		}
	}
}

func (s *Synth) drainCommands() {
	var cmd Command
	for i := 0; i < s.queue.Cap(); i++ {
		if !s.queue.Pop(&cmd) {
			break
		}
		s.ApplyCommand(cmd)
	}
}

// Process drains pending commands, renders exactly len(out) mono
// samples into out and advances the global sample clock. It performs
// no allocation, no locking and no unbounded work, so it is safe to
// call from an audio callback. After Shutdown it fills out with
// silence.
func (s *Synth) Process(out []float32) {
	s.drainCommands()

	for i := range out {
		out[i] = 0
	}
	if !s.shutdown {
		start := s.clock
		for i := range s.voices {
			if s.voices[i].active {
				s.voices[i].processInto(out, start)
			}
		}
		gain := s.mixGain * s.params.OutputGain
		for i := range out {
			out[i] *= gain
		}
	}
	s.clock += uint64(len(out))

	for i := range s.voices {
		if s.voices[i].active && s.voices[i].env.stage == StageIdle {
			s.voices[i].active = false
		}
	}
	s.publishSnapshot()
}

func (s *Synth) publishSnapshot() {
	s.snapIdx = (s.snapIdx + 1) % snapshotRing
	snap := &s.snaps[s.snapIdx]
	snap.Clock = s.clock
	snap.Voices = snap.Voices[:0]
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			continue
		}
		snap.Voices = append(snap.Voices, VoiceState{
			NoteID:      v.noteID,
			FrequencyHz: v.frequency,
			Stage:       v.env.stage,
		})
	}
	snap.ActiveVoices = len(snap.Voices)
	s.snap.Store(snap)
}

// Snapshot returns the most recently published state view. It is safe
// to call from any goroutine.
func (s *Synth) Snapshot() *Snapshot {
	return s.snap.Load()
}
