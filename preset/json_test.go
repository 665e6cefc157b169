package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-groove/enhance"
)

func writeTemp(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONOverridesDefaults(t *testing.T) {
	path := writeTemp(t, "settings.json", `{
		"sample_rate": 22050,
		"seed": 7,
		"kick_threshold": 0.7,
		"chord": [48, 52, 55],
		"piano_spacing_s": 2.0,
		"kick_freq_hz": 60,
		"reverb_tail": true
	}`)

	cfg, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if cfg.SampleRate != 22050 || cfg.Seed != 7 {
		t.Fatalf("sample_rate/seed not applied: %d/%d", cfg.SampleRate, cfg.Seed)
	}
	if cfg.Drums.KickThreshold != 0.7 {
		t.Fatalf("kick threshold %g, want 0.7", cfg.Drums.KickThreshold)
	}
	if len(cfg.Piano.Chord) != 3 || cfg.Piano.Chord[0] != 48 {
		t.Fatalf("chord not applied: %v", cfg.Piano.Chord)
	}
	if cfg.Piano.SpacingS != 2.0 {
		t.Fatalf("spacing %g, want 2", cfg.Piano.SpacingS)
	}
	if cfg.Kick.FreqHz != 60 {
		t.Fatalf("kick freq %g, want 60", cfg.Kick.FreqHz)
	}
	if !cfg.PianoVoice.ReverbTail {
		t.Fatal("reverb_tail not applied")
	}

	// Untouched fields keep their defaults.
	def := enhance.DefaultConfig()
	if cfg.Drums.SnareThreshold != def.Drums.SnareThreshold {
		t.Fatalf("snare threshold changed: %g", cfg.Drums.SnareThreshold)
	}
	if cfg.Piano.NoteDurationS != def.Piano.NoteDurationS {
		t.Fatalf("note duration changed: %g", cfg.Piano.NoteDurationS)
	}
}

func TestLoadJSONEmptyObjectKeepsDefaults(t *testing.T) {
	path := writeTemp(t, "empty.json", `{}`)
	cfg, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	def := enhance.DefaultConfig()
	if cfg.SampleRate != def.SampleRate || cfg.Seed != def.Seed {
		t.Fatalf("defaults not preserved: %d/%d", cfg.SampleRate, cfg.Seed)
	}
}

func TestLoadJSONInvalidValuesRejected(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"sample_rate": 0}`)
	if _, err := LoadJSON(path); err == nil {
		t.Fatal("expected validation error for zero sample rate")
	}

	path = writeTemp(t, "malformed.json", `{"sample_rate": `)
	if _, err := LoadJSON(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}

	if _, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadFileReportsPresentFields(t *testing.T) {
	path := writeTemp(t, "with.json", `{"sample_rate": 48000}`)
	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if f.SampleRate == nil || *f.SampleRate != 48000 {
		t.Fatalf("sample_rate not parsed: %v", f.SampleRate)
	}

	path = writeTemp(t, "without.json", `{"seed": 3}`)
	f, err = ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if f.SampleRate != nil {
		t.Fatalf("sample_rate unexpectedly set: %d", *f.SampleRate)
	}
	if f.Seed == nil || *f.Seed != 3 {
		t.Fatalf("seed not parsed: %v", f.Seed)
	}
}

func TestApplyFileNilArguments(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatal("expected error for nil destination")
	}
	cfg := enhance.DefaultConfig()
	if err := ApplyFile(&cfg, nil); err != nil {
		t.Fatalf("nil file should be a no-op: %v", err)
	}
}

func TestLoadBeatsJSON(t *testing.T) {
	path := writeTemp(t, "beats.json", `{"beats": [0.0, 0.5, 1.0], "onsets": [0.25]}`)
	beats, onsets, err := LoadBeatsJSON(path)
	if err != nil {
		t.Fatalf("LoadBeatsJSON: %v", err)
	}
	if len(beats) != 3 || beats[1] != 0.5 {
		t.Fatalf("unexpected beats %v", beats)
	}
	if len(onsets) != 1 || onsets[0] != 0.25 {
		t.Fatalf("unexpected onsets %v", onsets)
	}
}

func TestLoadBeatsJSONRejectsNonIncreasing(t *testing.T) {
	path := writeTemp(t, "beats.json", `{"beats": [0.0, 1.0, 1.0]}`)
	if _, _, err := LoadBeatsJSON(path); err == nil {
		t.Fatal("expected error for non-increasing beats")
	}
}

func TestLoadCurveJSON(t *testing.T) {
	path := writeTemp(t, "curve.json", `[0.1, 0.9, 0.4]`)
	curve, err := LoadCurveJSON(path)
	if err != nil {
		t.Fatalf("LoadCurveJSON: %v", err)
	}
	if len(curve) != 3 || curve[1] != 0.9 {
		t.Fatalf("unexpected curve %v", curve)
	}

	path = writeTemp(t, "bad.json", `[0.1, "x"]`)
	if _, err := LoadCurveJSON(path); err == nil {
		t.Fatal("expected error for non-numeric curve entry")
	}
}
