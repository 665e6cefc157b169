package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-groove/enhance"
)

// File is the JSON schema for enhancement settings. All fields are
// optional; present fields are applied over the defaults.
type File struct {
	SampleRate *int   `json:"sample_rate"`
	Seed       *int64 `json:"seed"`

	KickThreshold  *float64 `json:"kick_threshold"`
	SnareThreshold *float64 `json:"snare_threshold"`
	HiHatThreshold *float64 `json:"hihat_threshold"`
	HiHatBlend     *float64 `json:"hihat_blend"`
	HiHatFloor     *float64 `json:"hihat_floor"`
	FillKickGain   *float64 `json:"fill_kick_gain"`
	FillSnareGain  *float64 `json:"fill_snare_gain"`

	Chord         []int    `json:"chord"`
	PianoSpacingS *float64 `json:"piano_spacing_s"`
	NoteDurationS *float64 `json:"note_duration_s"`
	OctaveProb    *float64 `json:"octave_prob"`
	TimingJitterS *float64 `json:"timing_jitter_s"`

	KickFreqHz  *float64 `json:"kick_freq_hz"`
	KickDecay   *float64 `json:"kick_decay"`
	SnareDecay  *float64 `json:"snare_decay"`
	SnareFilter *float64 `json:"snare_filter"`
	HiHatDecay  *float64 `json:"hihat_decay"`
	PianoDecay  *float64 `json:"piano_decay"`
	ReverbTail  *bool    `json:"reverb_tail"`
	ReverbMix   *float64 `json:"reverb_mix"`
}

// ReadFile parses a settings file without applying it. Callers that
// need to know which fields were present, such as a CLI reconciling a
// requested sample rate with a source file's, inspect the pointers.
func ReadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadJSON loads a settings file and applies it on top of the default
// pipeline configuration.
func LoadJSON(path string) (enhance.Config, error) {
	cfg := enhance.DefaultConfig()
	f, err := ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyFile(&cfg, f); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyFile applies a parsed settings file onto an existing config.
// The merged config is validated as a whole.
func ApplyFile(dst *enhance.Config, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}

	if f.SampleRate != nil {
		dst.SampleRate = *f.SampleRate
	}
	if f.Seed != nil {
		dst.Seed = *f.Seed
	}

	if f.KickThreshold != nil {
		dst.Drums.KickThreshold = *f.KickThreshold
	}
	if f.SnareThreshold != nil {
		dst.Drums.SnareThreshold = *f.SnareThreshold
	}
	if f.HiHatThreshold != nil {
		dst.Drums.HiHatThreshold = *f.HiHatThreshold
	}
	if f.HiHatBlend != nil {
		dst.Drums.HiHatBlend = *f.HiHatBlend
	}
	if f.HiHatFloor != nil {
		dst.Drums.HiHatFloor = *f.HiHatFloor
	}
	if f.FillKickGain != nil {
		dst.Drums.FillKickGain = *f.FillKickGain
	}
	if f.FillSnareGain != nil {
		dst.Drums.FillSnareGain = *f.FillSnareGain
	}

	if len(f.Chord) > 0 {
		dst.Piano.Chord = append([]int(nil), f.Chord...)
	}
	if f.PianoSpacingS != nil {
		dst.Piano.SpacingS = *f.PianoSpacingS
	}
	if f.NoteDurationS != nil {
		dst.Piano.NoteDurationS = *f.NoteDurationS
	}
	if f.OctaveProb != nil {
		dst.Piano.OctaveProb = *f.OctaveProb
	}
	if f.TimingJitterS != nil {
		dst.Piano.TimingJitterS = *f.TimingJitterS
	}

	if f.KickFreqHz != nil {
		dst.Kick.FreqHz = *f.KickFreqHz
	}
	if f.KickDecay != nil {
		dst.Kick.DecayPerS = *f.KickDecay
	}
	if f.SnareDecay != nil {
		dst.Snare.DecayPerS = *f.SnareDecay
	}
	if f.SnareFilter != nil {
		dst.Snare.FilterCoeff = *f.SnareFilter
	}
	if f.HiHatDecay != nil {
		dst.HiHat.DecayPerS = *f.HiHatDecay
	}
	if f.PianoDecay != nil {
		dst.PianoVoice.DecayPerS = *f.PianoDecay
	}
	if f.ReverbTail != nil {
		dst.PianoVoice.ReverbTail = *f.ReverbTail
	}
	if f.ReverbMix != nil {
		dst.PianoVoice.ReverbMix = *f.ReverbMix
	}

	return dst.Validate()
}

// BeatsFile is the JSON schema for beat grids produced by an external
// beat/onset detector.
type BeatsFile struct {
	Beats  []float64 `json:"beats"`
	Onsets []float64 `json:"onsets"`
}

// LoadBeatsJSON reads beat and onset timestamps in seconds. Beats must
// be finite and strictly increasing; onsets only finite.
func LoadBeatsJSON(path string) (beats []float64, onsets []float64, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var f BeatsFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, nil, err
	}
	for i, v := range f.Beats {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("beats[%d] is not finite: %g", i, v)
		}
		if i > 0 && v <= f.Beats[i-1] {
			return nil, nil, fmt.Errorf("beats must be strictly increasing: beats[%d]=%g beats[%d]=%g", i-1, f.Beats[i-1], i, v)
		}
	}
	for i, v := range f.Onsets {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("onsets[%d] is not finite: %g", i, v)
		}
	}
	return f.Beats, f.Onsets, nil
}

// LoadCurveJSON reads an intensity curve produced by an external
// model: a JSON array of finite numbers of any length.
func LoadCurveJSON(path string) ([]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var curve []float64
	if err := json.Unmarshal(b, &curve); err != nil {
		return nil, err
	}
	for i, v := range curve {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("curve[%d] is not finite: %g", i, v)
		}
	}
	return curve, nil
}
