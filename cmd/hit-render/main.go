package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/cwbudde/algo-groove/internal/wavio"
	"github.com/cwbudde/algo-groove/synth"
)

func main() {
	instrument := flag.String("instrument", "kick", "Instrument to render: kick, snare, hihat, piano")
	duration := flag.Float64("duration", 0, "Duration in seconds (0 = instrument default)")
	freq := flag.Float64("freq", 0, "Kick frequency in Hz (0 = default)")
	note := flag.Int("note", 60, "MIDI note for piano")
	reverb := flag.Bool("reverb", false, "Enable piano reverb tail")
	seed := flag.Int64("seed", 1, "Random seed for noise and reverb impulse")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	output := flag.String("output", "hit.wav", "Output WAV file path")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	var samples []float64
	var err error
	switch *instrument {
	case "kick":
		cfg := synth.DefaultKickConfig()
		cfg.SampleRate = *sampleRate
		if *duration > 0 {
			cfg.DurationS = *duration
		}
		if *freq > 0 {
			cfg.FreqHz = *freq
		}
		samples, err = synth.Kick(cfg)
	case "snare":
		cfg := synth.DefaultSnareConfig()
		cfg.SampleRate = *sampleRate
		if *duration > 0 {
			cfg.DurationS = *duration
		}
		samples, err = synth.Snare(cfg, rng)
	case "hihat":
		cfg := synth.DefaultHiHatConfig()
		cfg.SampleRate = *sampleRate
		if *duration > 0 {
			cfg.DurationS = *duration
		}
		samples, err = synth.HiHat(cfg, rng)
	case "piano":
		cfg := synth.DefaultPianoConfig()
		cfg.SampleRate = *sampleRate
		cfg.Note = *note
		cfg.ReverbTail = *reverb
		if *duration > 0 {
			cfg.DurationS = *duration
		}
		samples, err = synth.PianoNote(cfg, rng)
	default:
		fmt.Fprintf(os.Stderr, "unknown instrument %q\n", *instrument)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", *instrument, err)
		os.Exit(1)
	}

	if err := wavio.WriteMono(*output, samples, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames, %s, seed %d)\n", *output, len(samples), *instrument, *seed)
}
