package main

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-groove/synth"
)

// knobDef describes one tunable synthesis parameter with its search
// bounds. The optimizer works in normalized [0,1] space; values are
// mapped back through these bounds on every evaluation.
type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

func knobsFor(instrument string) ([]knobDef, error) {
	switch instrument {
	case "kick":
		return []knobDef{
			{Name: "freq_hz", Min: 20, Max: 150},
			{Name: "decay", Min: 5, Max: 120},
			{Name: "amp", Min: 0.05, Max: 1.0},
		}, nil
	case "snare":
		return []knobDef{
			{Name: "decay", Min: 20, Max: 400},
			{Name: "filter", Min: 0, Max: 0.95},
			{Name: "amp", Min: 0.05, Max: 1.0},
		}, nil
	case "hihat":
		return []knobDef{
			{Name: "decay", Min: 100, Max: 2000},
			{Name: "amp", Min: 0.05, Max: 1.0},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported instrument %q (use kick, snare, or hihat)", instrument)
	}
}

func fromNormalized(pos []float64, defs []knobDef) map[string]float64 {
	vals := make(map[string]float64, len(defs))
	for i, d := range defs {
		p := pos[i]
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		vals[d.Name] = d.Min + p*(d.Max-d.Min)
	}
	return vals
}

// renderCandidate synthesizes one hit with the candidate knob values.
// The noise generator is reseeded per evaluation so every candidate is
// judged on the same noise realization.
func renderCandidate(instrument string, vals map[string]float64, sampleRate int, durationS float64, seed int64) ([]float64, error) {
	rng := rand.New(rand.NewSource(seed))
	switch instrument {
	case "kick":
		cfg := synth.DefaultKickConfig()
		cfg.SampleRate = sampleRate
		cfg.DurationS = durationS
		cfg.FreqHz = vals["freq_hz"]
		cfg.DecayPerS = vals["decay"]
		cfg.Amp = vals["amp"]
		return synth.Kick(cfg)
	case "snare":
		cfg := synth.DefaultSnareConfig()
		cfg.SampleRate = sampleRate
		cfg.DurationS = durationS
		cfg.DecayPerS = vals["decay"]
		cfg.FilterCoeff = vals["filter"]
		cfg.Amp = vals["amp"]
		return synth.Snare(cfg, rng)
	case "hihat":
		cfg := synth.DefaultHiHatConfig()
		cfg.SampleRate = sampleRate
		cfg.DurationS = durationS
		cfg.DecayPerS = vals["decay"]
		cfg.Amp = vals["amp"]
		return synth.HiHat(cfg, rng)
	default:
		return nil, fmt.Errorf("unsupported instrument %q", instrument)
	}
}
