package detector

import "github.com/kizaaku/climonitor/termbuffer"

// NewSnapshot builds a detector Snapshot from a screen buffer's current
// lines and UI boxes. It is the seam between the screen-buffer package
// and the tool-specific pattern matchers, which depend only on this
// package's Snapshot/Box shape.
func NewSnapshot(lines []string, boxes []termbuffer.Box) Snapshot {
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = Box{
			ContentTop:    b.Top + 1,
			ContentBottom: b.Bottom - 1,
			ContentLines:  b.ContentLines,
			BelowLines:    b.BelowLines,
		}
	}
	return Snapshot{Lines: lines, Boxes: out}
}
