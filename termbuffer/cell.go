// Package termbuffer reconstructs the visible screen of an xterm-class
// terminal from a raw ANSI/VT byte stream, and exposes UI-box detection
// over the reconstructed grid.
package termbuffer

import "github.com/mattn/go-runewidth"

// Color is a terminal color. A zero value means "default" (no color set).
// Palette colors use Indexed with Value in [0,255]; SGR true-color
// sequences use RGB with R/G/B set and Indexed false.
type Color struct {
	Indexed bool
	Value   uint8 // palette index, when Indexed
	RGB     bool
	R, G, B uint8
}

// AttrFlags holds SGR rendition attributes other than color.
type AttrFlags struct {
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Blink     bool
	Reverse   bool
	Strike    bool
}

// Cell is a single grid position.
type Cell struct {
	Rune rune
	// Width is the display width of Rune (1 or 2). Continuation cells
	// carry Width 0.
	Width int
	// Continuation marks the second column of a wide character. It holds
	// no renderable content of its own.
	Continuation bool
	Fg           Color
	Bg           Color
	Attrs        AttrFlags
}

// blankCell is what a freshly cleared position looks like.
var blankCell = Cell{Rune: ' ', Width: 1}

// runeWidth returns the display width of r per East-Asian-width rules.
// The zero rune reports width 0; any other rune that runewidth sizes as
// zero-width (control or combining characters) is given width 1.
func runeWidth(r rune) int {
	if r == 0 {
		return 0
	}
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}
	return w
}
