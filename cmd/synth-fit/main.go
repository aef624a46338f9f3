package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-synth/control"
	"github.com/cwbudde/algo-synth/internal/wavutil"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

func main() {
	referencePath := flag.String("reference", "reference/a4.wav", "Reference WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (optional)")
	outputPreset := flag.String("output-preset", "fitted.json", "Path to write best fitted preset JSON")
	note := flag.String("note", "a", "Note to fit (c, d, e, f, g, a, b, c5)")
	freq := flag.Float64("freq", 0, "Frequency override in Hz (0 uses -note)")
	noteDuration := flag.Float64("note-duration", 1.5, "Seconds before the note is released in each evaluation")
	sampleRate := flag.Int("sample-rate", synth.DefaultSampleRate, "Render/analysis sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 4000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 50, "Print progress every N evaluations")
	blockSize := flag.Int("render-block-size", 128, "Audio render block size for candidate evaluation")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	roundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *noteDuration <= 0 {
		die("note-duration must be > 0")
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *roundEvals < *mayflyPop*2 {
		*roundEvals = *mayflyPop * 2
	}
	if *blockSize < 16 {
		*blockSize = 16
	}

	baseParams := synth.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		baseParams = p
	}

	frequency := float32(*freq)
	if frequency <= 0 {
		f, err := control.NoteFrequency(*note)
		if err != nil {
			die("%v", err)
		}
		frequency = f
	}

	refRaw, refSR, err := wavutil.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	reference, err := wavutil.ResampleIfNeeded(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	defs, initCand := knobDefs(baseParams)

	cfg := &optimizationConfig{
		reference:     reference,
		baseParams:    baseParams,
		defs:          defs,
		initCandidate: initCand,
		frequency:     frequency,
		noteDuration:  *noteDuration,
		sampleRate:    *sampleRate,
		seed:          *seed,
		timeBudget:    *timeBudget,
		maxEvals:      *maxEvals,
		reportEvery:   *reportEvery,
		mayflyVariant: strings.ToLower(*mayflyVariant),
		mayflyPop:     *mayflyPop,
		roundEvals:    *roundEvals,
		blockSize:     *blockSize,
	}

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	if err := preset.SaveJSON(*outputPreset, result.bestParams); err != nil {
		die("failed to write preset: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		result.evals, result.elapsed, result.bestMetrics.Score, result.bestMetrics.Similarity*100.0, cfg.mayflyVariant)
	fmt.Printf("Wrote %s\n", *outputPreset)
	for i, d := range defs {
		fmt.Printf("  %-20s %.5g\n", d.Name, result.best.Vals[i])
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
