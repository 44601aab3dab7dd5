package transcript

import "strings"

// Feature-name prefixes that mark negative controls and blanks.
// Matching is anchored at position 0 and case-sensitive.
var controlProbePrefixes = []string{
	"NegControlProbe_",
	"antisense_",
	"NegControlCodeword_",
	"BLANK_",
}

// Bounds holds the inclusion thresholds for a filter run.
// Spatial bounds are inclusive on both ends, MinQV is an inclusive
// lower bound with no upper counterpart.
type Bounds struct {
	MinX  float64
	MaxX  float64
	MinY  float64
	MaxY  float64
	MinQV float64
}

// Keep reports whether t passes all inclusion rules.
//
// NaN coordinates or quality scores fail their comparisons, so records
// carrying them are dropped.
func (b Bounds) Keep(t *Transcript) bool {
	return t.XLocation >= b.MinX &&
		t.XLocation <= b.MaxX &&
		t.YLocation >= b.MinY &&
		t.YLocation <= b.MaxY &&
		t.QV >= b.MinQV &&
		!IsControlProbe(t.FeatureName)
}

// IsControlProbe reports whether name starts with a control-probe prefix.
func IsControlProbe(name string) bool {
	for _, prefix := range controlProbePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
