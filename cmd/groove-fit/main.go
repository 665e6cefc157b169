// groove-fit tunes drum synthesis knobs so a rendered hit matches a
// reference one-shot recording, using the mayfly optimizer over
// normalized knob space and analysis.Compare as the objective.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-groove/analysis"
	"github.com/cwbudde/algo-groove/internal/wavio"
)

type fitReport struct {
	Instrument string             `json:"instrument"`
	SampleRate int                `json:"sample_rate"`
	Evals      int                `json:"evals"`
	ElapsedS   float64            `json:"elapsed_s"`
	Knobs      map[string]float64 `json:"knobs"`
	Metrics    analysis.Metrics   `json:"metrics"`
}

func main() {
	refPath := flag.String("reference", "", "Reference one-shot WAV")
	instrument := flag.String("instrument", "kick", "Instrument to fit: kick, snare, hihat")
	variant := flag.String("variant", "ma", "Mayfly variant: ma, desma, olce, eobbma, gsasma, mpma, aoblmoa")
	pop := flag.Int("pop", 12, "Mayfly population size")
	maxEvals := flag.Int("max-evals", 600, "Evaluation budget")
	rate := flag.Int("sample-rate", 0, "Fit/render sample rate (0 = reference file rate)")
	seed := flag.Int64("seed", 1, "Random seed")
	outputWAV := flag.String("output-wav", "fit_best.wav", "Best rendered hit WAV path")
	outputJSON := flag.String("output-json", "fit_best.json", "Best knobs JSON path")
	flag.Parse()

	if *refPath == "" {
		fmt.Fprintln(os.Stderr, "-reference is required")
		flag.Usage()
		os.Exit(1)
	}

	reference, fileRate, err := wavio.ReadMono(*refPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *refPath, err)
		os.Exit(1)
	}
	if len(reference) == 0 {
		fmt.Fprintln(os.Stderr, "reference is empty")
		os.Exit(1)
	}
	sampleRate := fileRate
	if *rate > 0 {
		sampleRate = *rate
	}
	reference, err = wavio.ResampleIfNeeded(reference, fileRate, sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resampling reference to %d Hz: %v\n", sampleRate, err)
		os.Exit(1)
	}
	durationS := float64(len(reference)) / float64(sampleRate)

	defs, err := knobsFor(*instrument)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Fitting %s to %q (%d frames @ %d Hz, %d knobs, budget %d evals)...\n",
		*instrument, *refPath, len(reference), sampleRate, len(defs), *maxEvals)

	start := time.Now()
	evals := 0
	bestScore := math.Inf(1)
	var bestVals map[string]float64
	var bestMetrics analysis.Metrics

	cfg, err := newMayflyConfig(*variant, *pop, len(defs), *maxEvals)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.Rand = rand.New(rand.NewSource(*seed))
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		evals++
		vals := fromNormalized(pos, defs)
		hit, err := renderCandidate(*instrument, vals, sampleRate, durationS, *seed)
		if err != nil {
			return bestScore + 1.0
		}
		m := analysis.Compare(reference, hit, sampleRate)
		if m.Score < bestScore {
			bestScore = m.Score
			bestVals = vals
			bestMetrics = m
			fmt.Printf("Improved eval=%d score=%.4f sim=%.2f%%\n", evals, m.Score, m.Similarity*100.0)
		}
		return m.Score
	}

	if _, err := runMayfly(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "optimization failed: %v\n", err)
		os.Exit(1)
	}
	if bestVals == nil {
		fmt.Fprintln(os.Stderr, "no successful evaluation")
		os.Exit(1)
	}

	hit, err := renderCandidate(*instrument, bestVals, sampleRate, durationS, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rendering best candidate: %v\n", err)
		os.Exit(1)
	}
	if err := wavio.WriteMono(*outputWAV, hit, sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *outputWAV, err)
		os.Exit(1)
	}

	report := fitReport{
		Instrument: *instrument,
		SampleRate: sampleRate,
		Evals:      evals,
		ElapsedS:   time.Since(start).Seconds(),
		Knobs:      bestVals,
		Metrics:    bestMetrics,
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding report: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputJSON, b, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *outputJSON, err)
		os.Exit(1)
	}

	fmt.Printf("Done: score=%.4f sim=%.2f%% after %d evals (%.1fs)\n",
		bestScore, bestMetrics.Similarity*100.0, evals, report.ElapsedS)
}

func newMayflyConfig(variant string, pop int, dims int, maxEvals int) (*mayfly.Config, error) {
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
	iters := maxEvals / (2 * pop)
	if iters < 1 {
		iters = 1
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
