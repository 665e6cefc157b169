package mixdown

import (
	"math"
	"testing"
)

func TestAccumulateAdditive(t *testing.T) {
	buf := make([]float64, 10)
	Accumulate(buf, []float64{1, 1, 1}, 2, 0.5)
	Accumulate(buf, []float64{1}, 3, 0.25)

	want := []float64{0, 0, 0.5, 0.75, 0.5, 0, 0, 0, 0, 0}
	for i := range want {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %g want %g", i, buf[i], want[i])
		}
	}
}

func TestAccumulateSkipsOutOfBounds(t *testing.T) {
	buf := make([]float64, 4)

	// End past the buffer: the whole write is dropped.
	Accumulate(buf, []float64{1, 1, 1}, 2, 1.0)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("index %d written despite overflow: %g", i, v)
		}
	}

	Accumulate(buf, []float64{1, 1}, -1, 1.0)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("index %d written despite negative start: %g", i, v)
		}
	}
}

func TestNormalizePeakUnitPeak(t *testing.T) {
	buf := []float64{0.1, -0.5, 0.25}
	NormalizePeak(buf)

	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-1.0) > 1e-12 {
		t.Fatalf("post-normalization peak %g, want 1", peak)
	}
}

func TestNormalizePeakSilentUnchanged(t *testing.T) {
	buf := make([]float64, 8)
	NormalizePeak(buf)
	for i, v := range buf {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("index %d: got %g want 0", i, v)
		}
	}
}

func TestMixLengthMismatch(t *testing.T) {
	orig := make([]float64, 10)
	if _, err := Mix(orig, make([]float64, 9), make([]float64, 10)); err == nil {
		t.Fatal("expected error for drum length mismatch")
	}
	if _, err := Mix(orig, make([]float64, 10), make([]float64, 11)); err == nil {
		t.Fatal("expected error for piano length mismatch")
	}
}

func TestMixPeakBounded(t *testing.T) {
	n := 64
	orig := make([]float64, n)
	drums := make([]float64, n)
	piano := make([]float64, n)
	for i := 0; i < n; i++ {
		orig[i] = math.Sin(float64(i) * 0.7)
		drums[i] = math.Cos(float64(i) * 0.3)
		piano[i] = math.Sin(float64(i) * 1.9)
	}

	out, err := Mix(orig, drums, piano)
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if len(out) != n {
		t.Fatalf("output length %d, want %d", len(out), n)
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite sample at %d", i)
		}
		if math.Abs(v) > 1.0+1e-12 {
			t.Fatalf("sample %d exceeds unit amplitude: %g", i, v)
		}
	}
}

func TestMixSilentLayers(t *testing.T) {
	orig := []float64{0.25, -0.5, 0.1}
	out, err := Mix(orig, make([]float64, 3), make([]float64, 3))
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	// Silent layers contribute nothing; the result is the normalized
	// original.
	want := []float64{0.5, -1.0, 0.2}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %g want %g", i, out[i], want[i])
		}
	}
}

func TestMixDoesNotMutateInputs(t *testing.T) {
	orig := []float64{0.5, 0.5}
	drums := []float64{0.25, 0.25}
	piano := []float64{0.1, 0.1}

	if _, err := Mix(orig, drums, piano); err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if drums[0] != 0.25 || piano[0] != 0.1 {
		t.Fatalf("inputs mutated: drums[0]=%g piano[0]=%g", drums[0], piano[0])
	}
}
