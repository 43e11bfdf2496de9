// Package progress renders bounded counters as fixed-width text bars.
package progress

import (
	"fmt"
	"math"
	"strings"
)

const (
	filled  = '='
	pointer = '>'
	blank   = ' '
)

// Bar is a rendered progress bar.
type Bar struct {
	Text    string  // exactly Width glyphs, without brackets
	Width   int
	Pointer int     // index of the pointer glyph, -1 when the bar is empty
	Percent float64 // rounded to 2 decimals
}

// Render formats current/limit as a bar of width glyphs. A non-positive
// limit yields a blank bar at 0%.
func Render(current, limit, width int) Bar {
	if width < 0 {
		width = 0
	}
	if limit <= 0 || width == 0 {
		return Bar{Text: strings.Repeat(string(blank), width), Width: width, Pointer: -1}
	}

	ratio := float64(current) / float64(limit)
	pos := int(math.RoundToEven(ratio * float64(width)))
	pos = min(max(pos, 0), width-1)

	var b strings.Builder
	b.Grow(width)
	for i := 0; i < width; i++ {
		switch {
		case i < pos:
			b.WriteRune(filled)
		case i == pos:
			b.WriteRune(pointer)
		default:
			b.WriteRune(blank)
		}
	}

	return Bar{
		Text:    b.String(),
		Width:   width,
		Pointer: pos,
		Percent: math.RoundToEven(ratio*100*100) / 100,
	}
}

// String renders the bar as inline code, e.g. "`[=====>    ]`".
func (b Bar) String() string {
	return fmt.Sprintf("`[%s]`", b.Text)
}

// Line renders "current/limit (percent%) label" under the bar.
func Line(current, limit, width int, label string) string {
	bar := Render(current, limit, width)
	return fmt.Sprintf("%s\n%d/%d (%s%%) %s", bar, current, limit, FormatPercent(bar.Percent), label)
}

// FormatPercent drops trailing zeros: 50 -> "50", 33.33 -> "33.33", 12.5 -> "12.5".
func FormatPercent(p float64) string {
	s := fmt.Sprintf("%.2f", p)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
