package synth

// blendSmoothingSeconds is the time constant used when the blend ratio
// is retargeted at runtime.
const blendSmoothingSeconds = 0.02

// BlendedEngine crossfades an additive and an FM tone generator. The
// effective ratio follows the target through a one-pole smoother so a
// ratio change never steps audibly; the smoothed value is what enters
// the blend formula on every sample. Ratio 0 is pure additive, 1 pure
// FM.
type BlendedEngine struct {
	additive AdditiveEngine
	fm       FMEngine
	target   float32
	smoothed float32
	alpha    float32
}

func (b *BlendedEngine) init(sampleRate int, fundamentalHz float32, fm FMParams, ratio float32) {
	b.additive.init(sampleRate, fundamentalHz)
	b.fm.init(sampleRate, fundamentalHz, fm)
	ratio = clampf(ratio, 0, 1)
	b.target = ratio
	b.smoothed = ratio
	b.alpha = smoothingCoeff(sampleRate, blendSmoothingSeconds)
}

func (b *BlendedEngine) setBlendRatio(ratio float32) {
	b.target = clampf(ratio, 0, 1)
}

func (b *BlendedEngine) setFrequency(fundamentalHz float32) {
	b.additive.setFrequency(fundamentalHz)
	b.fm.setFrequency(fundamentalHz)
}

// next produces one blended sample.
func (b *BlendedEngine) next() float32 {
	b.smoothed += (b.target - b.smoothed) * b.alpha
	add := b.additive.next()
	fm := b.fm.next()
	return (1-b.smoothed)*add + b.smoothed*fm
}
