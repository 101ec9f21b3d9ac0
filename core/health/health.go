// Package health maps a material's numeric condition score to its
// categorical health state.
package health

import "shelftrack/model"

// Classification thresholds. A condition at or above GoodMin is good, at or
// above WarningMin is warning, anything below is bad.
const (
	GoodMin    = 80
	WarningMin = 40
)

// Classify returns the health state for a condition score. The function is
// total: values outside [0,100] are classified by the same thresholds with no
// special-casing, so callers that want range enforcement do it at their own
// boundary.
func Classify(condition int) string {
	switch {
	case condition >= GoodMin:
		return model.StateGood
	case condition >= WarningMin:
		return model.StateWarning
	default:
		return model.StateBad
	}
}
