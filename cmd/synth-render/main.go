package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-synth/control"
	"github.com/cwbudde/algo-synth/internal/wavutil"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

const blockSize = 128

func main() {
	note := flag.String("note", "a", "Note name (c, d, e, f, g, a, b, c5)")
	freq := flag.Float64("freq", 0, "Frequency override in Hz (0 uses -note)")
	duration := flag.Float64("duration", 2.0, "Note duration in seconds")
	blend := flag.Float64("blend", -1, "Blend ratio override in [0,1] (negative keeps preset value)")
	sampleRate := flag.Int("sample-rate", synth.DefaultSampleRate, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	stereo := flag.Bool("stereo", false, "Write dual-mono stereo instead of mono")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	params := synth.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		params = p
	}
	if *blend >= 0 {
		if *blend > 1 {
			fmt.Fprintln(os.Stderr, "Error: -blend must be in [0,1]")
			os.Exit(1)
		}
		params.Blend = float32(*blend)
	}

	frequency := float32(*freq)
	if frequency <= 0 {
		f, err := control.NoteFrequency(*note)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		frequency = f
	}
	if *duration <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -duration must be positive")
		os.Exit(1)
	}

	fmt.Printf("Rendering %.2f Hz for %.2f seconds at %d Hz (blend %.3f)...\n",
		frequency, *duration, *sampleRate, params.Blend)

	s := synth.NewSynth(*sampleRate, 8, params)
	s.Queue().Push(synth.Command{
		Kind:            synth.CmdNoteOn,
		NoteID:          0,
		FrequencyHz:     frequency,
		DurationSamples: uint64(*duration * float64(*sampleRate)),
	})

	// Render the note plus its release tail and a short safety pad.
	tailSeconds := float64(params.Envelope.Release) + 0.05
	totalFrames := int(float64(*sampleRate) * (*duration + tailSeconds))
	samples := make([]float32, 0, totalFrames)
	block := make([]float32, blockSize)
	for rendered := 0; rendered < totalFrames; rendered += blockSize {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}
		s.Process(block[:n])
		samples = append(samples, block[:n]...)
	}

	var err error
	if *stereo {
		err = wavutil.WriteStereoInterleavedWAV(*output, wavutil.DuplicateMono(samples), *sampleRate)
	} else {
		err = wavutil.WriteMonoWAV(*output, samples, *sampleRate)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames, peak RMS %.4f)\n", *output, totalFrames, wavutil.RMS(samples))
}
