package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Weights defines the contribution of each signal to the composite score.
// The defaults sum to 1.0 so composite scores stay in [0, 1].
type Weights struct {
	Keyword  float64 `json:"keyword"`  // Weight for keyword relevance (default: 0.30)
	Price    float64 `json:"price"`    // Weight for price fit (default: 0.15)
	Quality  float64 `json:"quality"`  // Weight for rating quality (default: 0.30)
	Distance float64 `json:"distance"` // Weight for proximity (default: 0.15)
	Open     float64 `json:"open"`     // Weight for open-now status (default: 0.10)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight configuration
}

// DefaultWeights returns the canonical weight configuration.
//
// Formula: score = penalty × (keyword·0.30 + price·0.15 + quality·0.30 +
// distance·0.15 + open·0.10), where penalty is 0.6 when the candidate's known
// rating falls below the profile's minimum and 1.0 otherwise.
//
// Keyword relevance and rating quality dominate because they are the
// strongest predictors of "is this the place the caller meant"; price,
// distance and openness refine the ordering without excluding anyone.
func DefaultWeights() *Weights {
	return &Weights{
		Keyword:  0.30,
		Price:    0.15,
		Quality:  0.30,
		Distance: 0.15,
		Open:     0.10,
	}
}

// LoadCalibration loads ranking weights from a JSON calibration file.
// If the file doesn't exist or can't be read, returns default weights with an
// error so the caller can log and continue. Partial configurations are merged
// with defaults for graceful degradation.
func LoadCalibration(filePath string) (*Weights, error) {
	// Return defaults if no file path provided
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights into base weights. Only non-zero
// values from the override are applied, which allows partial overrides in the
// calibration file.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	// Guard against nil base to avoid panics; fall back to defaults.
	if base == nil {
		return DefaultWeights()
	}

	// If there is no override provided, return a copy of the base.
	if override == nil {
		result := *base
		return &result
	}

	result := *base // Copy base

	if override.Keyword != 0 {
		result.Keyword = override.Keyword
	}
	if override.Price != 0 {
		result.Price = override.Price
	}
	if override.Quality != 0 {
		result.Quality = override.Quality
	}
	if override.Distance != 0 {
		result.Distance = override.Distance
	}
	if override.Open != 0 {
		result.Open = override.Open
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	if loaded.Keyword != defaults.Keyword {
		overrides = append(overrides, fmt.Sprintf("keyword: %.2f -> %.2f",
			defaults.Keyword, loaded.Keyword))
	}
	if loaded.Price != defaults.Price {
		overrides = append(overrides, fmt.Sprintf("price: %.2f -> %.2f",
			defaults.Price, loaded.Price))
	}
	if loaded.Quality != defaults.Quality {
		overrides = append(overrides, fmt.Sprintf("quality: %.2f -> %.2f",
			defaults.Quality, loaded.Quality))
	}
	if loaded.Distance != defaults.Distance {
		overrides = append(overrides, fmt.Sprintf("distance: %.2f -> %.2f",
			defaults.Distance, loaded.Distance))
	}
	if loaded.Open != defaults.Open {
		overrides = append(overrides, fmt.Sprintf("open: %.2f -> %.2f",
			defaults.Open, loaded.Open))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
