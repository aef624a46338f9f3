package synth

// Voice is one sounding note: a blended tone generator, an ADSR
// envelope and a low-pass filter. Voices live in the Synth's fixed
// pool and are reinitialized in place, so triggering a note never
// allocates.
type Voice struct {
	noteID        int
	frequency     float32
	engine        BlendedEngine
	env           Envelope
	filter        LowPassFilter
	active        bool
	createdAt     uint64
	autoReleaseAt uint64 // absolute sample index, 0 = held
}

func (v *Voice) start(sampleRate int, noteID int, frequencyHz float32, clock uint64, durationSamples uint64, p *Params) {
	v.noteID = noteID
	v.frequency = frequencyHz
	v.engine.init(sampleRate, frequencyHz, p.FM, p.Blend)
	v.env.init(sampleRate, p.Envelope)
	v.filter.init(sampleRate, p.Filter)
	v.active = true
	v.createdAt = clock
	v.autoReleaseAt = 0
	if durationSamples > 0 {
		v.autoReleaseAt = clock + durationSamples
	}
	v.env.noteOn()
}

// retrigger restarts the envelope from its current amplitude without
// resetting oscillator or filter state.
func (v *Voice) retrigger(clock uint64, durationSamples uint64) {
	v.createdAt = clock
	v.autoReleaseAt = 0
	if durationSamples > 0 {
		v.autoReleaseAt = clock + durationSamples
	}
	v.env.noteOn()
}

func (v *Voice) release() {
	v.env.noteOff()
}

// processInto renders len(out) samples and accumulates them into out.
// startClock is the global sample index of out[0]. The enveloped tone
// is filtered before it is summed into the block.
func (v *Voice) processInto(out []float32, startClock uint64) {
	for i := range out {
		if v.autoReleaseAt != 0 && startClock+uint64(i) >= v.autoReleaseAt {
			v.env.noteOff()
			v.autoReleaseAt = 0
		}
		amp := v.env.next()
		raw := v.engine.next()
		out[i] += v.filter.process(raw * amp)
	}
}
