package synth

import (
	"testing"
)

func TestVoiceLifecycle(t *testing.T) {
	const sr = 48000
	p := NewDefaultParams()
	var v Voice
	v.start(sr, 3, 440, 0, 0, p)
	if !v.active {
		t.Fatal("voice not active after start")
	}
	if v.env.Stage() != StageAttack {
		t.Fatalf("expected attack after start, got %v", v.env.Stage())
	}

	out := make([]float32, sr/10)
	v.processInto(out, 0)
	if rms(out) < 1e-4 {
		t.Fatal("started voice produced silence")
	}

	v.release()
	if v.env.Stage() != StageRelease {
		t.Fatalf("expected release, got %v", v.env.Stage())
	}

	// A full release worth of samples later the envelope is idle.
	tail := make([]float32, int(float64(sr)*float64(p.Envelope.Release))+16)
	v.processInto(tail, uint64(len(out)))
	if v.env.Stage() != StageIdle {
		t.Fatalf("expected idle after release tail, got %v", v.env.Stage())
	}
}

func TestVoiceAutoReleaseAtDuration(t *testing.T) {
	const sr = 48000
	const durationSamples = 1000
	p := NewDefaultParams()
	var v Voice
	v.start(sr, 0, 440, 0, durationSamples, p)

	// First 999 samples: still held.
	out := make([]float32, durationSamples-1)
	v.processInto(out, 0)
	if v.env.Stage() == StageRelease {
		t.Fatal("released before the configured duration")
	}

	// The sample at the duration boundary triggers the release.
	out2 := make([]float32, 2)
	v.processInto(out2, durationSamples-1)
	if v.env.Stage() != StageRelease {
		t.Fatalf("expected release at duration boundary, got %v", v.env.Stage())
	}
	if v.autoReleaseAt != 0 {
		t.Fatal("autoReleaseAt not cleared after firing")
	}
}

func TestVoiceAutoReleaseMidBlock(t *testing.T) {
	const sr = 48000
	p := NewDefaultParams()
	var v Voice
	// Release boundary lands inside the block.
	v.start(sr, 0, 440, 0, 64, p)
	out := make([]float32, 128)
	v.processInto(out, 0)
	if v.env.Stage() != StageRelease {
		t.Fatalf("expected mid-block release, got %v", v.env.Stage())
	}
}

func TestVoiceRetriggerKeepsOscillatorState(t *testing.T) {
	const sr = 48000
	p := NewDefaultParams()
	var v Voice
	v.start(sr, 0, 440, 0, 0, p)
	out := make([]float32, 500)
	v.processInto(out, 0)
	phase := v.engine.additive.phases[0]

	v.retrigger(500, 0)
	if v.engine.additive.phases[0] != phase {
		t.Fatal("retrigger reset oscillator phase")
	}
	if v.env.Stage() != StageAttack {
		t.Fatalf("retrigger should restart the envelope, got %v", v.env.Stage())
	}
	if v.createdAt != 500 {
		t.Fatalf("retrigger should refresh creation clock, got %d", v.createdAt)
	}
}

func TestVoiceHeldNoteIgnoresDuration(t *testing.T) {
	const sr = 48000
	p := NewDefaultParams()
	var v Voice
	v.start(sr, 0, 440, 0, 0, p)
	out := make([]float32, sr)
	v.processInto(out, 0)
	if v.env.Stage() == StageRelease || v.env.Stage() == StageIdle {
		t.Fatalf("held voice released itself: %v", v.env.Stage())
	}
}
