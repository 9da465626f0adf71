// Package ranking scores restaurant candidates against a caller profile and
// returns the top results with a human-readable justification per candidate.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		slog.Warn("using default weights", "error", err)
//	}
//
//	result, err := ranking.Rank(candidates, profile, origin, 10, weights)
//	if err != nil {
//		// *ranking.ValidationError: bad topK or malformed origin
//	}
//	for _, item := range result.Items {
//		fmt.Println(item.PlaceID, item.Score, item.Why)
//	}
//
// Signals:
//
// Five independent signal functions (keyword, price, quality, distance, open)
// each map a candidate and the profile into [0, 1]. Missing candidate data is
// never an error: every signal resolves absent inputs to a documented neutral
// default so incomplete places rank lower, not not-at-all. The composite score
// is a fixed weighted sum, optionally dampened by a soft rating penalty.
//
// Calibration:
//
// Weights can be tuned at deploy time via a JSON calibration file loaded at
// startup. The shipped defaults are the canonical weights; partial override
// files merge with defaults for graceful degradation.
package ranking
