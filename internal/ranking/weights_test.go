package ranking

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultWeights verifies the canonical weights and that they sum to 1.
func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()

	if w.Keyword != 0.30 {
		t.Errorf("expected keyword weight 0.30, got %f", w.Keyword)
	}
	if w.Price != 0.15 {
		t.Errorf("expected price weight 0.15, got %f", w.Price)
	}
	if w.Quality != 0.30 {
		t.Errorf("expected quality weight 0.30, got %f", w.Quality)
	}
	if w.Distance != 0.15 {
		t.Errorf("expected distance weight 0.15, got %f", w.Distance)
	}
	if w.Open != 0.10 {
		t.Errorf("expected open weight 0.10, got %f", w.Open)
	}

	sum := w.Keyword + w.Price + w.Quality + w.Distance + w.Open
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("weights should sum to 1.0, got %f", sum)
	}
}

// TestLoadCalibration tests file loading with fallback behavior.
func TestLoadCalibration(t *testing.T) {
	t.Run("empty path returns defaults without error", func(t *testing.T) {
		w, err := LoadCalibration("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *w != *DefaultWeights() {
			t.Errorf("expected defaults, got %+v", w)
		}
	})

	t.Run("missing file returns defaults with error", func(t *testing.T) {
		w, err := LoadCalibration(filepath.Join(t.TempDir(), "nope.json"))
		if err == nil {
			t.Error("expected an error for a missing file")
		}
		if *w != *DefaultWeights() {
			t.Errorf("expected defaults on error, got %+v", w)
		}
	})

	t.Run("malformed file returns defaults with error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		w, err := LoadCalibration(path)
		if err == nil {
			t.Error("expected an error for malformed JSON")
		}
		if *w != *DefaultWeights() {
			t.Errorf("expected defaults on error, got %+v", w)
		}
	})

	t.Run("partial override merges with defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "calibration.json")
		content := `{"version":"1","weights":{"keyword":0.5,"quality":0.2}}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		w, err := LoadCalibration(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.Keyword != 0.5 {
			t.Errorf("expected overridden keyword 0.5, got %f", w.Keyword)
		}
		if w.Quality != 0.2 {
			t.Errorf("expected overridden quality 0.2, got %f", w.Quality)
		}
		if w.Price != 0.15 || w.Distance != 0.15 || w.Open != 0.10 {
			t.Errorf("expected untouched defaults, got %+v", w)
		}
	})
}

// TestMergeCalibration tests nil handling and zero-value semantics.
func TestMergeCalibration(t *testing.T) {
	t.Run("nil base falls back to defaults", func(t *testing.T) {
		w := MergeCalibration(nil, &Weights{Keyword: 0.9})
		if *w != *DefaultWeights() {
			t.Errorf("expected defaults, got %+v", w)
		}
	})

	t.Run("nil override copies base", func(t *testing.T) {
		base := &Weights{Keyword: 0.5, Price: 0.5}
		w := MergeCalibration(base, nil)
		if *w != *base {
			t.Errorf("expected a copy of base, got %+v", w)
		}
		if w == base {
			t.Error("expected a copy, got the same pointer")
		}
	})

	t.Run("zero values do not override", func(t *testing.T) {
		base := DefaultWeights()
		w := MergeCalibration(base, &Weights{Distance: 0.4})
		if w.Distance != 0.4 {
			t.Errorf("expected overridden distance 0.4, got %f", w.Distance)
		}
		if w.Keyword != base.Keyword || w.Price != base.Price || w.Quality != base.Quality || w.Open != base.Open {
			t.Errorf("zero-valued fields should not override, got %+v", w)
		}
	})
}
