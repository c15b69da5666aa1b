// Package format holds the small text and currency helpers shared by the
// generator, the report and the console preview.
package format

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cast"
)

var markdownMarkers = strings.NewReplacer("**", "", "__", "", "`", "", "*", "")

// Clean strips markdown emphasis markers (bold, italic, inline code) and
// collapses whitespace runs to single spaces.
func Clean(text string) string {
	text = markdownMarkers.Replace(strings.TrimSpace(text))
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// BRL renders v as Brazilian reais, e.g. 20000.0 -> "R$ 20.000,00".
// Anything that does not coerce to a finite number renders as "R$ 0,00".
func BRL(v any) string {
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	return "R$ " + humanize.FormatFloat("#.###,##", n)
}

// Wrap breaks text on word boundaries so that lines fit in width columns.
// Words longer than width are kept whole.
func Wrap(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" || width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}
