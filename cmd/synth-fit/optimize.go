package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/synth"
)

type optimizationConfig struct {
	reference     []float64
	baseParams    *synth.Params
	defs          []knobDef
	initCandidate candidate
	frequency     float32
	noteDuration  float64
	sampleRate    int
	seed          int64
	timeBudget    float64
	maxEvals      int
	reportEvery   int
	mayflyVariant string
	mayflyPop     int
	roundEvals    int
	blockSize     int
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	bestParams  *synth.Params
	evals       int
	elapsed     float64
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))

	best := cloneCandidate(cfg.initCandidate)
	bestParams := applyCandidate(cfg.baseParams, cfg.defs, best)
	bestMetrics := evaluateCandidate(cfg, bestParams)
	fmt.Printf("Start score=%.4f similarity=%.2f%%\n", bestMetrics.Score, bestMetrics.Similarity*100.0)

	evals := 1
	round := 0
	for time.Now().Before(deadline) && evals < cfg.maxEvals {
		round++
		remaining := cfg.maxEvals - evals
		budget := cfg.roundEvals
		if budget > remaining {
			budget = remaining
		}
		iters := budget / (2 * cfg.mayflyPop)
		if iters < 1 {
			iters = 1
		}

		mayflyConfig, err := newMayflyConfig(cfg.mayflyVariant, cfg.mayflyPop, len(cfg.defs), iters)
		if err != nil {
			return nil, err
		}
		mayflyConfig.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
		mayflyConfig.ObjectiveFunc = func(pos []float64) float64 {
			if time.Now().After(deadline) || evals >= cfg.maxEvals {
				return bestMetrics.Score + 1.0
			}
			evals++

			cand := fromNormalized(pos, cfg.defs)
			params := applyCandidate(cfg.baseParams, cfg.defs, cand)
			metrics := evaluateCandidate(cfg, params)
			if metrics.Score < bestMetrics.Score {
				best = cloneCandidate(cand)
				bestParams = params
				bestMetrics = metrics
				fmt.Printf("Improved eval=%d score=%.4f sim=%.2f%%\n", evals, metrics.Score, metrics.Similarity*100.0)
			}
			if cfg.reportEvery > 0 && evals%cfg.reportEvery == 0 {
				fmt.Printf("Progress eval=%d/%d elapsed=%.1fs best=%.4f\n", evals, cfg.maxEvals, time.Since(start).Seconds(), bestMetrics.Score)
			}
			return metrics.Score
		}

		if _, err := runMayfly(mayflyConfig); err != nil {
			return nil, fmt.Errorf("mayfly round %d failed: %w", round, err)
		}
	}

	return &optimizationResult{
		best:        best,
		bestMetrics: bestMetrics,
		bestParams:  bestParams,
		evals:       evals,
		elapsed:     time.Since(start).Seconds(),
	}, nil
}

// evaluateCandidate renders one note with the candidate params and
// scores it against the reference recording.
func evaluateCandidate(cfg *optimizationConfig, params *synth.Params) analysis.Metrics {
	mono := renderCandidate(params, cfg.frequency, cfg.noteDuration, cfg.sampleRate, cfg.blockSize)
	return analysis.Compare(cfg.reference, mono, cfg.sampleRate)
}

func renderCandidate(params *synth.Params, frequency float32, noteDuration float64, sampleRate int, blockSize int) []float64 {
	s := synth.NewSynth(sampleRate, 1, params)
	s.Queue().Push(synth.Command{
		Kind:            synth.CmdNoteOn,
		NoteID:          0,
		FrequencyHz:     frequency,
		DurationSamples: uint64(noteDuration * float64(sampleRate)),
	})

	tail := float64(params.Envelope.Release) + 0.05
	totalFrames := int(float64(sampleRate) * (noteDuration + tail))
	out := make([]float64, 0, totalFrames)
	block := make([]float32, blockSize)
	for rendered := 0; rendered < totalFrames; rendered += blockSize {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}
		s.Process(block[:n])
		for _, v := range block[:n] {
			out = append(out, float64(v))
		}
	}
	return out
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	nm := int(math.Round(0.05 * float64(pop)))
	if nm < 1 {
		nm = 1
	}
	cfg.NM = nm
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
