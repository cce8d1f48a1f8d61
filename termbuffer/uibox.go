package termbuffer

// Box-drawing glyphs this package recognizes. Tool UIs in the wild are
// consistent about using the single-line box set; double-line and ASCII
// fallback boxes are not in scope.
const (
	glyphTopLeft     = '╭'
	glyphTopRight    = '╮'
	glyphBottomLeft  = '╰'
	glyphBottomRight = '╯'
	glyphHorizontal  = '─'
	glyphVertical    = '│'
)

// Box describes one rectangular UI frame found in the current screen.
// Top/Bottom are grid row indices and Left/Right are rune indices into
// the rendered line (Lines output), inclusive, of the frame's border;
// Left/Right equal grid columns unless a wide character precedes them
// on the row. ContentLines holds the text between the side borders
// for each interior row; AboveLines/BelowLines hold whatever full screen
// lines sit immediately outside the frame (for context extraction).
type Box struct {
	Top, Bottom, Left, Right int
	ContentLines             []string
	AboveLines               []string
	BelowLines               []string
}

// FindBoxes scans the current screen for Unicode box-drawing frames and
// returns every complete one found, per the following algorithm:
//  1. scan for a top-left corner (╭)
//  2. scan right along the same row for the matching top-right corner (╮)
//  3. scan down from the left corner for a bottom-left corner (╰),
//     requiring a vertical side (│) at the left column on every row in
//     between
//  4. confirm a bottom-right corner (╯) at the same row and column as the
//     top-right corner
//  5. record the rectangle; when multiple valid frames share a top-left
//     corner, keep the smallest (tie-break toward the innermost box)
//
// Overlapping candidates are resolved greedily: once a row's top-left
// corner has been consumed by a box, scanning continues past that box's
// right edge rather than re-examining its interior.
func (b *Buffer) FindBoxes() []Box {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := b.renderLinesLocked()
	runes := make([][]rune, len(lines))
	for i, l := range lines {
		runes[i] = []rune(l)
	}

	var boxes []Box
	for row := 0; row < len(runes); row++ {
		col := 0
		for col < len(runes[row]) {
			if runes[row][col] != glyphTopLeft {
				col++
				continue
			}
			box, ok := findBoxAt(runes, row, col)
			if !ok {
				col++
				continue
			}
			box.AboveLines = contextAbove(lines, box.Top)
			box.BelowLines = contextBelow(lines, box.Bottom)
			boxes = append(boxes, box)
			col = box.Right + 1
		}
	}
	return boxes
}

// findBoxAt attempts to match a complete box frame with its top-left
// corner at (top, left). Candidate top-right corners are tried from
// nearest to farthest so that, among overlapping possibilities on the
// same top row, the smallest enclosing rectangle wins.
func findBoxAt(runes [][]rune, top, left int) (Box, bool) {
	row := runes[top]
	for right := left + 2; right < len(row); right++ {
		if row[right] != glyphTopRight {
			if row[right] != glyphHorizontal {
				break // the border must be a contiguous run of ─
			}
			continue
		}

		bottom, ok := findBottom(runes, top, left, right)
		if !ok {
			continue
		}

		content := make([]string, 0, bottom-top-1)
		for r := top + 1; r < bottom; r++ {
			content = append(content, extractContent(runes[r], left, right))
		}

		return Box{
			Top: top, Bottom: bottom, Left: left, Right: right,
			ContentLines: content,
		}, true
	}
	return Box{}, false
}

// findBottom scans down from the top-right candidate looking for a
// bottom-left/bottom-right pair, requiring a vertical side glyph at both
// left and right columns on every row strictly between top and bottom.
func findBottom(runes [][]rune, top, left, right int) (int, bool) {
	for r := top + 1; r < len(runes); r++ {
		row := runes[r]
		if right >= len(row) {
			return 0, false
		}
		if row[left] == glyphBottomLeft && row[right] == glyphBottomRight {
			return r, true
		}
		if row[left] != glyphVertical || row[right] != glyphVertical {
			return 0, false
		}
	}
	return 0, false
}

// extractContent returns the text strictly between the side borders at
// columns left and right on the given row.
func extractContent(row []rune, left, right int) string {
	if left+1 >= right || right > len(row) {
		return ""
	}
	inner := row[left+1 : right]
	return string(inner)
}

// contextLineCount is K from the UI-box detection algorithm: up to this
// many lines immediately outside the frame are captured for state
// detectors that key off text surrounding a box (e.g. "waiting for
// input" prompts printed just below it).
const contextLineCount = 4

func contextAbove(lines []string, top int) []string {
	start := top - contextLineCount
	if start < 0 {
		start = 0
	}
	return append([]string(nil), lines[start:top]...)
}

func contextBelow(lines []string, bottom int) []string {
	start := bottom + 1
	if start >= len(lines) {
		return nil
	}
	end := start + contextLineCount
	if end > len(lines) {
		end = len(lines)
	}
	return append([]string(nil), lines[start:end]...)
}
