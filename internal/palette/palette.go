// Package palette assigns a fixed, repeating color per emitted line and
// formats scores for display.
package palette

import (
	"fmt"
	"math"
)

// colors is the 32-entry fixed palette, assigned in emission order and
// wrapped on the 33rd line.
var colors = [32]string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8",
	"#f58231", "#911eb4", "#46f0f0", "#f032e6",
	"#bcf60c", "#fabebe", "#008080", "#e6beff",
	"#9a6324", "#fffac8", "#800000", "#aaffc3",
	"#808000", "#ffd8b1", "#000075", "#808080",
	"#ff6f61", "#6b5b95", "#88b04b", "#92a8d1",
	"#955251", "#b565a7", "#009b77", "#dd4124",
	"#45b8ac", "#efc50f", "#9b2335", "#5b5ea6",
}

// Color returns the palette entry for emission index i.
func Color(i int) string {
	return colors[i%len(colors)]
}

// Mate score magnitudes at or above this threshold render as M<k> instead
// of a centipawn fraction, per the score-formatting convention.
const mateScoreThreshold = 29000

// FormatScore renders a white-positive centipawn score for display:
// "M<k>"/"-M<k>" for forced mates, otherwise a signed two-decimal pawn
// count with a leading '+' for non-negative values.
func FormatScore(score int) string {
	mag := score
	if mag < 0 {
		mag = -mag
	}
	if mag >= mateScoreThreshold {
		k := int(math.Ceil(float64(30000-mag) / 2))
		if score < 0 {
			return fmt.Sprintf("-M%d", k)
		}
		return fmt.Sprintf("M%d", k)
	}

	value := float64(score) / 100
	if score >= 0 {
		return fmt.Sprintf("+%.2f", value)
	}
	return fmt.Sprintf("%.2f", value)
}
