package enhance

import (
	"math"
	"testing"
)

func testWaveform(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * math.Sin(float64(i)*0.21)
	}
	return w
}

func TestProcessEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 100
	cfg.Seed = 11

	enh, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	waveform := testWaveform(300) // 3 seconds at 100 Hz
	curve := []float64{0.8, 0.8, 0.8, 0.8}
	beats := []float64{0.0, 1.0, 2.0}

	out, err := enh.Process(waveform, curve, beats, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(waveform) {
		t.Fatalf("output length %d, want %d", len(out), len(waveform))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite sample at %d", i)
		}
		if math.Abs(v) > 1.0+1e-12 {
			t.Fatalf("sample %d exceeds unit amplitude: %g", i, v)
		}
	}

	// The piano layer always places notes, so the result must differ
	// from the plain normalized original.
	same := true
	norm := append([]float64(nil), waveform...)
	peak := 0.0
	for _, v := range norm {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	for i := range norm {
		norm[i] /= peak
	}
	for i := range out {
		if out[i] != norm[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("output identical to normalized original; no layers applied")
	}
}

func TestProcessDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 200
	cfg.Seed = 99

	enh, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	waveform := testWaveform(600)
	curve := []float64{0.2, 0.9, 0.4}
	beats := []float64{0.0, 0.5, 1.0, 1.5, 2.0}
	onsets := []float64{0.1, 1.4}

	a, err := enh.Process(waveform, curve, beats, onsets)
	if err != nil {
		t.Fatalf("first Process: %v", err)
	}
	b, err := enh.Process(waveform, curve, beats, onsets)
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic output at index %d", i)
		}
	}

	cfg.Seed = 100
	enh2, err := New(cfg)
	if err != nil {
		t.Fatalf("New with new seed: %v", err)
	}
	c, err := enh2.Process(waveform, curve, beats, onsets)
	if err != nil {
		t.Fatalf("third Process: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical output")
	}
}

func TestProcessContractViolations(t *testing.T) {
	enh, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := enh.Process(nil, []float64{0.5}, nil, nil); err == nil {
		t.Fatal("expected error for empty waveform")
	}
	if _, err := enh.Process(testWaveform(100), []float64{math.NaN()}, nil, nil); err == nil {
		t.Fatal("expected error for non-finite curve")
	}
	if _, err := enh.Process(testWaveform(100), []float64{0.5}, []float64{1, 1}, nil); err == nil {
		t.Fatal("expected error for non-increasing beats")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	cfg = DefaultConfig()
	cfg.Piano.SpacingS = -1
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for negative piano spacing")
	}
}

type stubModel struct {
	curve []float64
}

func (m stubModel) Intensity(waveform []float64, sampleRate int) ([]float64, error) {
	return m.curve, nil
}

type stubDetector struct {
	beats  []float64
	onsets []float64
}

func (d stubDetector) Detect(waveform []float64, sampleRate int) ([]float64, []float64, error) {
	return d.beats, d.onsets, nil
}

func TestProcessWithCollaborators(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 100
	enh, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	waveform := testWaveform(300)
	model := stubModel{curve: []float64{0.8}}
	detector := stubDetector{beats: []float64{0.0, 1.0, 2.0}}

	viaInterfaces, err := enh.ProcessWith(model, detector, waveform)
	if err != nil {
		t.Fatalf("ProcessWith: %v", err)
	}
	direct, err := enh.Process(waveform, model.curve, detector.beats, detector.onsets)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range direct {
		if viaInterfaces[i] != direct[i] {
			t.Fatalf("interface path diverged at index %d", i)
		}
	}

	if _, err := enh.ProcessWith(nil, detector, waveform); err == nil {
		t.Fatal("expected error for nil model")
	}
	if _, err := enh.ProcessWith(model, nil, waveform); err == nil {
		t.Fatal("expected error for nil detector")
	}
}
