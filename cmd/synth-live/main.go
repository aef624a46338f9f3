package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-synth/control"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

// renderReader adapts the engine's block renderer to the io.Reader the
// audio backend pulls from. Reads happen on the playback goroutine,
// which makes it the engine's render context.
type renderReader struct {
	s     *synth.Synth
	block []float32
}

func (r *renderReader) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if cap(r.block) < frames {
		r.block = make([]float32, frames)
	}
	block := r.block[:frames]
	r.s.Process(block)
	for i, s := range block {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 4, nil
}

func main() {
	sampleRate := flag.Int("sample-rate", synth.DefaultSampleRate, "Output sample rate in Hz")
	poly := flag.Int("poly", 8, "Maximum polyphony")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	bufferMs := flag.Int("buffer-ms", 20, "Audio buffer size in milliseconds")
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

	s := synth.NewSynth(*sampleRate, *poly, params)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(*bufferMs) * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	<-ready

	player := ctx.NewPlayer(&renderReader{s: s})
	player.Play()
	defer player.Close()

	// The queue is single-producer, so all pushes funnel through one
	// goroutine. Timed actions feed the same channel from timers.
	cmdCh := make(chan synth.Command, 64)
	go func() {
		for cmd := range cmdCh {
			if !s.Queue().Push(cmd) {
				fmt.Fprintln(os.Stderr, "warning: command queue full, input dropped")
			}
		}
	}()
	send := func(actions []control.Action) {
		for _, a := range actions {
			if a.At == 0 {
				cmdCh <- a.Cmd
				continue
			}
			cmd := a.Cmd
			time.AfterFunc(a.At, func() { cmdCh <- cmd })
		}
	}

	parser := control.NewParser(*sampleRate)
	printHelp()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()
		switch line {
		case "p":
			printSnapshot(s)
		case "env":
			fmt.Print("attack decay sustain release> ")
			if !scanner.Scan() {
				break
			}
			cmd, err := parser.ParseEnvelope(scanner.Text())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			} else {
				cmdCh <- cmd
			}
		case "filter":
			fmt.Print("cutoff resonance> ")
			if !scanner.Scan() {
				break
			}
			cmd, err := parser.ParseFilter(scanner.Text())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			} else {
				cmdCh <- cmd
			}
		case "q":
			cmdCh <- synth.Command{Kind: synth.CmdShutdown}
			// Let the release tails play out before the device closes.
			time.Sleep(time.Duration(float64(params.Envelope.Release)*float64(time.Second)) + 100*time.Millisecond)
			fmt.Println("Bye.")
			return
		default:
			actions, err := parser.ParseLine(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			} else {
				send(actions)
			}
		}
		fmt.Print("> ")
	}
}

func printSnapshot(s *synth.Synth) {
	snap := s.Snapshot()
	fmt.Printf("clock=%d voices=%d/%d\n", snap.Clock, snap.ActiveVoices, s.MaxPolyphony())
	for _, v := range snap.Voices {
		fmt.Printf("  note=%d freq=%.2fHz stage=%s\n", v.NoteID, v.FrequencyHz, v.Stage)
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  c d e f g a b        hold a note (s releases)")
	fmt.Println("  <note> <seconds>     timed note, e.g. 'a 0.5'")
	fmt.Println("  CHORD <seconds>      C major triad")
	fmt.Println("  SCALE <seconds>      ascending C major scale")
	fmt.Println("  1..9                 blend (1=additive, 9=FM)")
	fmt.Println("  env / filter         adjust envelope / filter")
	fmt.Println("  p                    show engine state")
	fmt.Println("  s                    release all notes")
	fmt.Println("  q                    quit")
}
