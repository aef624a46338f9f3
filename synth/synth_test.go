package synth

import (
	"testing"
)

func noteOnCmd(noteID int, freq float32, dur uint64) Command {
	return Command{Kind: CmdNoteOn, NoteID: noteID, FrequencyHz: freq, DurationSamples: dur}
}

func TestSynthNoteOnProducesSound(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, 440, 0))

	out := make([]float32, 4800)
	s.Process(out)
	if rms(out) < 1e-5 {
		t.Fatal("expected sound after NoteOn")
	}
	snap := s.Snapshot()
	if snap.ActiveVoices != 1 {
		t.Fatalf("expected 1 active voice, got %d", snap.ActiveVoices)
	}
	if snap.Voices[0].NoteID != 0 || snap.Voices[0].FrequencyHz != 440 {
		t.Fatalf("unexpected voice state: %+v", snap.Voices[0])
	}
	if snap.Clock != 4800 {
		t.Fatalf("clock not advanced: %d", snap.Clock)
	}
}

func TestSynthRetriggerDoesNotDuplicateVoice(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, 440, 0))
	out := make([]float32, 1024)
	s.Process(out)

	s.Queue().Push(noteOnCmd(0, 440, 0))
	s.Process(out)
	if got := s.Snapshot().ActiveVoices; got != 1 {
		t.Fatalf("retrigger duplicated the voice: %d active", got)
	}
	if s.voices[0].env.Stage() != StageAttack {
		t.Fatalf("retrigger should restart the envelope, got %v", s.voices[0].env.Stage())
	}
}

func TestSynthVoiceStealingReplacesOldest(t *testing.T) {
	s := NewSynth(48000, 2, nil)
	out := make([]float32, 256)

	s.Queue().Push(noteOnCmd(0, 261.63, 0))
	s.Process(out)
	s.Queue().Push(noteOnCmd(1, 329.63, 0))
	s.Process(out)
	s.Queue().Push(noteOnCmd(2, 392.00, 0))
	s.Process(out)

	snap := s.Snapshot()
	if snap.ActiveVoices != 2 {
		t.Fatalf("expected full pool of 2, got %d", snap.ActiveVoices)
	}
	ids := map[int]bool{}
	for _, v := range snap.Voices {
		ids[v.NoteID] = true
	}
	if ids[0] {
		t.Fatal("oldest voice (note 0) was not stolen")
	}
	if !ids[1] || !ids[2] {
		t.Fatalf("unexpected surviving voices: %+v", snap.Voices)
	}
}

func TestSynthChordVoicesShareReleaseSample(t *testing.T) {
	const sr = 48000
	const dur = 4800
	s := NewSynth(sr, 8, nil)
	s.Queue().Push(noteOnCmd(0, 261.63, dur))
	s.Queue().Push(noteOnCmd(2, 329.63, dur))
	s.Queue().Push(noteOnCmd(4, 392.00, dur))

	// One sample short of the duration: all still held.
	out := make([]float32, dur-1)
	s.Process(out)
	for _, v := range s.Snapshot().Voices {
		if v.Stage == StageRelease {
			t.Fatal("voice released early")
		}
	}

	// Crossing the boundary releases every chord voice together.
	out2 := make([]float32, 16)
	s.Process(out2)
	snap := s.Snapshot()
	if snap.ActiveVoices != 3 {
		t.Fatalf("expected 3 voices in release, got %d", snap.ActiveVoices)
	}
	for _, v := range snap.Voices {
		if v.Stage != StageRelease {
			t.Fatalf("voice %d not in release: %v", v.NoteID, v.Stage)
		}
	}
}

func TestSynthNoteOffReleasesOnlyMatchingNote(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, 261.63, 0))
	s.Queue().Push(noteOnCmd(1, 293.66, 0))
	out := make([]float32, 1024)
	s.Process(out)

	s.Queue().Push(Command{Kind: CmdNoteOff, NoteID: 0})
	s.Process(out)
	for _, v := range s.Snapshot().Voices {
		if v.NoteID == 0 && v.Stage != StageRelease {
			t.Fatalf("note 0 not released: %v", v.Stage)
		}
		if v.NoteID == 1 && v.Stage == StageRelease {
			t.Fatal("note 1 released unexpectedly")
		}
	}
}

func TestSynthReleasedVoiceSlotIsReclaimed(t *testing.T) {
	const sr = 48000
	s := NewSynth(sr, 1, nil)
	s.Queue().Push(noteOnCmd(0, 440, 0))
	out := make([]float32, 1024)
	s.Process(out)
	s.Queue().Push(Command{Kind: CmdNoteOff, NoteID: 0})

	// Render past the full release tail.
	tail := make([]float32, sr)
	s.Process(tail)
	if got := s.Snapshot().ActiveVoices; got != 0 {
		t.Fatalf("voice not reclaimed after release: %d active", got)
	}

	// The slot is immediately reusable without stealing.
	s.Queue().Push(noteOnCmd(5, 392, 0))
	s.Process(out)
	snap := s.Snapshot()
	if snap.ActiveVoices != 1 || snap.Voices[0].NoteID != 5 {
		t.Fatalf("slot not reused: %+v", snap)
	}
}

func TestSynthSetBlendRetargetsLiveVoices(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, 440, 0))
	out := make([]float32, 256)
	s.Process(out)

	s.Queue().Push(Command{Kind: CmdSetBlend, Blend: 1})
	s.Process(out)
	if s.params.Blend != 1 {
		t.Fatalf("params blend not updated: %v", s.params.Blend)
	}
	if s.voices[0].engine.target != 1 {
		t.Fatalf("live voice not retargeted: %v", s.voices[0].engine.target)
	}
	// The smoothed value lags the target.
	if s.voices[0].engine.smoothed >= 1 {
		t.Fatal("blend change applied without smoothing")
	}
}

func TestSynthSetEnvelopeAffectsNewVoicesOnly(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, 440, 0))
	out := make([]float32, 256)
	s.Process(out)
	oldAttack := s.voices[0].env.attackSamples

	s.Queue().Push(Command{Kind: CmdSetEnvelope, Envelope: EnvelopeParams{Attack: 0.5, Decay: 0.1, Sustain: 0.5, Release: 0.1}})
	s.Process(out)
	if s.voices[0].env.attackSamples != oldAttack {
		t.Fatal("envelope change altered a sounding voice")
	}

	s.Queue().Push(noteOnCmd(1, 330, 0))
	s.Process(out)
	for i := range s.voices {
		if s.voices[i].active && s.voices[i].noteID == 1 {
			if s.voices[i].env.attackSamples != 24000 {
				t.Fatalf("new voice attack %d samples, want 24000", s.voices[i].env.attackSamples)
			}
			return
		}
	}
	t.Fatal("new voice not found")
}

func TestSynthShutdownSilencesOutput(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, 440, 0))
	out := make([]float32, 1024)
	s.Process(out)

	s.Queue().Push(Command{Kind: CmdShutdown})
	s.Process(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("non-zero sample %d after shutdown: %v", i, v)
		}
	}
	// Commands after shutdown do not resurrect the engine.
	s.Queue().Push(noteOnCmd(1, 330, 0))
	s.Process(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("non-zero sample %d after post-shutdown NoteOn: %v", i, v)
		}
	}
}

func TestSynthOutputBoundedAtFullPolyphony(t *testing.T) {
	const poly = 8
	s := NewSynth(48000, poly, nil)
	freqs := []float32{261.63, 293.66, 329.63, 349.23, 392.00, 440.00, 493.88, 523.25}
	for i, f := range freqs {
		s.Queue().Push(noteOnCmd(i, f, 0))
	}
	out := make([]float32, 48000)
	s.Process(out)
	if peak := maxAbs(out); peak > 1 {
		t.Fatalf("full polyphony clipped: peak %v", peak)
	}
}

func TestSynthInvalidCommandsIgnored(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, -10, 0)) // non-positive frequency
	s.Queue().Push(Command{Kind: CmdNoteOff, NoteID: 42})
	out := make([]float32, 256)
	s.Process(out)
	if got := s.Snapshot().ActiveVoices; got != 0 {
		t.Fatalf("invalid commands created voices: %d", got)
	}
}

func TestSynthProcessDoesNotAllocate(t *testing.T) {
	s := NewSynth(48000, 8, nil)
	s.Queue().Push(noteOnCmd(0, 440, 0))
	s.Queue().Push(noteOnCmd(1, 330, 0))
	out := make([]float32, 512)
	s.Process(out)

	allocs := testing.AllocsPerRun(100, func() {
		s.Queue().Push(Command{Kind: CmdSetBlend, Blend: 0.3})
		s.Process(out)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %.1f times per run", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	s := NewSynth(48000, 8, nil)
	freqs := []float32{261.63, 329.63, 392.00, 523.25}
	for i, f := range freqs {
		s.Queue().Push(noteOnCmd(i, f, 0))
	}
	out := make([]float32, 512)
	s.Process(out)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Process(out)
	}
}
