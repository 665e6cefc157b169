package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-groove/analysis"
	"github.com/cwbudde/algo-groove/enhance"
	"github.com/cwbudde/algo-groove/internal/wavio"
	"github.com/cwbudde/algo-groove/preset"
)

func main() {
	input := flag.String("input", "", "Input WAV file (the track to enhance)")
	beatsPath := flag.String("beats", "", "Beat/onset JSON file from an external detector")
	curvePath := flag.String("curve", "", "Intensity curve JSON file from an external model (optional; spectral flux is used when omitted)")
	settingsPath := flag.String("settings", "", "Settings JSON file (optional)")
	seed := flag.Int64("seed", 0, "Random seed override (0 = keep settings value)")
	output := flag.String("output", "enhanced.wav", "Output WAV file path")
	flag.Parse()

	if *input == "" || *beatsPath == "" {
		fmt.Fprintln(os.Stderr, "both -input and -beats are required")
		flag.Usage()
		os.Exit(1)
	}

	waveform, sampleRate, err := wavio.ReadMono(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *input, err)
		os.Exit(1)
	}

	cfg := enhance.DefaultConfig()
	cfg.SampleRate = sampleRate
	if *settingsPath != "" {
		f, err := preset.ReadFile(*settingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading settings %q: %v\n", *settingsPath, err)
			os.Exit(1)
		}
		// A settings sample_rate requests a processing rate; the input
		// is converted to it rather than silently ignored.
		if f.SampleRate != nil && *f.SampleRate != sampleRate {
			fmt.Printf("Resampling input %d Hz -> %d Hz\n", sampleRate, *f.SampleRate)
			waveform, err = wavio.ResampleIfNeeded(waveform, sampleRate, *f.SampleRate)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error resampling input: %v\n", err)
				os.Exit(1)
			}
			sampleRate = *f.SampleRate
		}
		if err := preset.ApplyFile(&cfg, f); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid settings %q: %v\n", *settingsPath, err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	beats, onsets, err := preset.LoadBeatsJSON(*beatsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading beats %q: %v\n", *beatsPath, err)
		os.Exit(1)
	}

	var curve []float64
	if *curvePath != "" {
		curve, err = preset.LoadCurveJSON(*curvePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading curve %q: %v\n", *curvePath, err)
			os.Exit(1)
		}
	} else {
		curve, err = analysis.DefaultFlux().Intensity(waveform, sampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing flux intensity: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Enhancing %d frames at %d Hz (%.2fs, %d beats, %d onsets, seed %d)...\n",
		len(waveform), sampleRate, float64(len(waveform))/float64(sampleRate), len(beats), len(onsets), cfg.Seed)

	enh, err := enhance.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	out, err := enh.Process(waveform, curve, beats, onsets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enhancement failed: %v\n", err)
		os.Exit(1)
	}

	if err := wavio.WriteMono(*output, out, sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, len(out))
}
