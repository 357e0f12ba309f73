// SPDX-License-Identifier: MIT

package resolution

import "strings"

var glyphs = []rune{' ', '·', ':', '∴', '⁘', '⁙', '⠿', '⡿', '⣿', '9'}

func glyph(n int) rune {
	if n < len(glyphs) {
		return glyphs[n]
	}

	return '*'
}

// Chart renders generator counts for s = sMax down to 0, one line per s and
// one column per stem t - s starting at MinDegree.
func (r *Resolution) Chart(sMax int) string {
	var sb strings.Builder
	for s := sMax; s >= 0; s-- {
		var line strings.Builder
		last := r.MaxComputedDegree(s)
		for t := s + r.minDeg; t <= last; t++ {
			line.WriteRune(glyph(r.NumberOfGens(s, t)))
			line.WriteByte(' ')
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		if s > 0 {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
