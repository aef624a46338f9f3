package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

const twoPi = float32(2 * math.Pi)

func clampf(x float32, lo float32, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// smoothingCoeff returns the one-pole coefficient for a given time
// constant in seconds: 1 - exp(-1 / (tau * fs)).
func smoothingCoeff(sampleRate int, tau float32) float32 {
	if tau <= 0 || sampleRate <= 0 {
		return 1
	}
	return 1 - approx.FastExp(-1/(tau*float32(sampleRate)))
}
