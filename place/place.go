package place

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Kind identifies the instrument of a placed event.
type Kind int

const (
	KindKick Kind = iota
	KindSnare
	KindHiHat
	KindPiano
)

func (k Kind) String() string {
	switch k {
	case KindKick:
		return "kick"
	case KindSnare:
		return "snare"
	case KindHiHat:
		return "hihat"
	case KindPiano:
		return "piano"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a placement decision: which instrument to synthesize, when,
// for how long, and at what gain. Note is only meaningful for piano
// events.
type Event struct {
	Kind      Kind
	StartS    float64
	DurationS float64
	Gain      float64
	Note      int
}

// DrumConfig holds the per-beat decision thresholds and fill accent
// parameters. Probabilities derive from the intensity value at each
// beat: kickProb = intensity, snareProb = (1-intensity)/2,
// hihatProb = intensity*HiHatBlend + HiHatFloor.
type DrumConfig struct {
	KickThreshold  float64
	SnareThreshold float64
	HiHatThreshold float64
	HiHatBlend     float64
	HiHatFloor     float64

	FillKickGain     float64
	FillSnareGain    float64
	FillOffsetFrac   float64 // fill position as fraction of the interval
	FillWindowFrac   float64 // onset proximity window as fraction of the interval
	FillDurationFrac float64 // fill hit duration as fraction of the interval
}

func DefaultDrumConfig() DrumConfig {
	return DrumConfig{
		KickThreshold:    0.6,
		SnareThreshold:   0.4,
		HiHatThreshold:   0.5,
		HiHatBlend:       0.3,
		HiHatFloor:       0.7,
		FillKickGain:     0.8,
		FillSnareGain:    0.7,
		FillOffsetFrac:   0.2,
		FillWindowFrac:   0.5,
		FillDurationFrac: 0.25,
	}
}

func (c *DrumConfig) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"kick threshold", c.KickThreshold},
		{"snare threshold", c.SnareThreshold},
		{"hihat threshold", c.HiHatThreshold},
		{"hihat blend", c.HiHatBlend},
		{"hihat floor", c.HiHatFloor},
		{"fill kick gain", c.FillKickGain},
		{"fill snare gain", c.FillSnareGain},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("%s must be finite: %g", v.name, v.val)
		}
	}
	if c.FillOffsetFrac < 0 || c.FillOffsetFrac >= 1 {
		return fmt.Errorf("fill offset fraction must be in [0,1): %g", c.FillOffsetFrac)
	}
	if c.FillWindowFrac < 0 {
		return fmt.Errorf("fill window fraction must be >= 0: %g", c.FillWindowFrac)
	}
	if c.FillDurationFrac <= 0 || c.FillDurationFrac > 1 {
		return fmt.Errorf("fill duration fraction must be in (0,1]: %g", c.FillDurationFrac)
	}
	return nil
}

// PlanBeats runs the per-beat decision procedure over consecutive beat
// pairs and returns the drum events to synthesize. beats are
// timestamps in seconds; intensities holds one value per beat, sampled
// from the full-track intensity curve; onsets trigger fill accents
// when close enough to a beat. The procedure is deterministic.
func PlanBeats(cfg DrumConfig, beats []float64, intensities []float64, onsets []float64) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(intensities) != len(beats) {
		return nil, fmt.Errorf("beat intensities: got %d values for %d beats", len(intensities), len(beats))
	}
	for i, v := range intensities {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite intensity %g at beat %d", v, i)
		}
	}

	var events []Event
	for i := 0; i+1 < len(beats); i++ {
		interval := beats[i+1] - beats[i]
		if interval <= 0 {
			return nil, fmt.Errorf("beat grid not increasing: beats[%d]=%g beats[%d]=%g", i, beats[i], i+1, beats[i+1])
		}

		kickProb := intensities[i]
		snareProb := (1.0 - kickProb) * 0.5
		hihatProb := kickProb*cfg.HiHatBlend + cfg.HiHatFloor

		if kickProb > cfg.KickThreshold {
			events = append(events, Event{
				Kind:      KindKick,
				StartS:    beats[i],
				DurationS: interval,
				Gain:      kickProb,
			})
		}
		if snareProb > cfg.SnareThreshold {
			events = append(events, Event{
				Kind:      KindSnare,
				StartS:    beats[i] + interval/2,
				DurationS: interval / 2,
				Gain:      snareProb,
			})
		}
		if hihatProb > cfg.HiHatThreshold {
			events = append(events, Event{
				Kind:      KindHiHat,
				StartS:    beats[i] + interval/4,
				DurationS: interval / 4,
				Gain:      hihatProb,
			})
		}

		if onsetNear(onsets, beats[i], interval*cfg.FillWindowFrac) {
			fillStart := beats[i] + interval*cfg.FillOffsetFrac
			fillDur := interval * cfg.FillDurationFrac
			events = append(events,
				Event{Kind: KindKick, StartS: fillStart, DurationS: fillDur, Gain: cfg.FillKickGain},
				Event{Kind: KindSnare, StartS: fillStart, DurationS: fillDur, Gain: cfg.FillSnareGain},
			)
		}
	}
	return events, nil
}

func onsetNear(onsets []float64, t float64, window float64) bool {
	for _, o := range onsets {
		if math.Abs(o-t) <= window {
			return true
		}
	}
	return false
}

// PianoConfig controls the fixed-grid piano placement procedure.
type PianoConfig struct {
	SpacingS      float64
	Chord         []int
	NoteDurationS float64

	OctaveShift   int
	OctaveProb    float64
	GainMin       float64
	GainMax       float64
	TimingJitterS float64
}

func DefaultPianoConfig() PianoConfig {
	return PianoConfig{
		SpacingS:      1.0,
		Chord:         []int{60, 64, 67},
		NoteDurationS: 0.5,
		OctaveShift:   12,
		OctaveProb:    0.5,
		GainMin:       0.8,
		GainMax:       1.2,
		TimingJitterS: 0.05,
	}
}

func (c *PianoConfig) Validate() error {
	if c.SpacingS <= 0 {
		return fmt.Errorf("spacing must be > 0: %g", c.SpacingS)
	}
	if len(c.Chord) == 0 {
		return errors.New("chord must contain at least one note")
	}
	for i, n := range c.Chord {
		if n < 0 || n > 127 {
			return fmt.Errorf("chord[%d]: MIDI note must be in 0..127: %d", i, n)
		}
	}
	if c.NoteDurationS <= 0 {
		return fmt.Errorf("note duration must be > 0: %g", c.NoteDurationS)
	}
	if c.OctaveShift < 0 {
		return fmt.Errorf("octave shift must be >= 0: %d", c.OctaveShift)
	}
	if c.OctaveProb < 0 || c.OctaveProb > 1 {
		return fmt.Errorf("octave probability must be in [0,1]: %g", c.OctaveProb)
	}
	if c.GainMin < 0 || c.GainMax < c.GainMin {
		return fmt.Errorf("gain range invalid: [%g,%g]", c.GainMin, c.GainMax)
	}
	if c.TimingJitterS < 0 {
		return fmt.Errorf("timing jitter must be >= 0: %g", c.TimingJitterS)
	}
	return nil
}

// PlanPiano places one note per SpacingS over the track duration,
// cycling through the configured chord. Octave shift, gain jitter, and
// timing offset are drawn from rng; a fixed generator state reproduces
// the exact placement sequence.
func PlanPiano(cfg PianoConfig, durationS float64, rng *rand.Rand) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if durationS < 0 {
		return nil, fmt.Errorf("track duration must be >= 0: %g", durationS)
	}
	if rng == nil {
		return nil, errors.New("nil rng")
	}

	count := int(math.Ceil(durationS / cfg.SpacingS))
	events := make([]Event, 0, count)
	for k := 0; k < count; k++ {
		note := cfg.Chord[k%len(cfg.Chord)]
		if cfg.OctaveShift > 0 && rng.Float64() < cfg.OctaveProb {
			if rng.Float64() < 0.5 {
				note += cfg.OctaveShift
			} else {
				note -= cfg.OctaveShift
			}
			if note < 0 {
				note = 0
			}
			if note > 127 {
				note = 127
			}
		}
		gain := cfg.GainMin + rng.Float64()*(cfg.GainMax-cfg.GainMin)
		start := float64(k)*cfg.SpacingS + (rng.Float64()*2.0-1.0)*cfg.TimingJitterS
		if start < 0 {
			start = 0
		}
		events = append(events, Event{
			Kind:      KindPiano,
			StartS:    start,
			DurationS: cfg.NoteDurationS,
			Gain:      gain,
			Note:      note,
		})
	}
	return events, nil
}
