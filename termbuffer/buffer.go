package termbuffer

import "sync"

// defaultTabStop is the interval, in columns, between horizontal tab stops.
const defaultTabStop = 8

// Buffer is a rectangular grid of cells reconstructing the visible screen
// of an xterm-class terminal. Internally the grid is rows x (cols+1): the
// trailing column is a sentinel that absorbs cursor-wraparound writes so
// that applications redrawing UI frames with relative cursor movement
// don't cause the frame to be emitted twice. Consumers only ever see the
// first cols columns of each row.
//
// A Buffer is safe for concurrent use, though spec.md's concurrency model
// calls for it to be mutated from a single task (the PTY-reader); the
// lock exists so detectors and renderers on the same goroutine can read a
// consistent snapshot without additional coordination.
type Buffer struct {
	mu sync.Mutex

	rows, cols int // cols is the reported width; grid width is cols+1
	grid       [][]Cell

	cursorRow, cursorCol int

	curFg    Color
	curBg    Color
	curAttrs AttrFlags
	autowrap bool

	scrollTop, scrollBottom int // inclusive row bounds, 0-indexed

	savedRow, savedCol int
	savedFg, savedBg   Color
	savedAttrs         AttrFlags

	verbose   bool
	traceSink func(line string)

	pending []byte // bytes left over from a split escape sequence or UTF-8 rune
}

// New creates a Buffer with the given dimensions. rows and cols must be
// positive; callers typically pass the PTY's advertised size.
func New(rows, cols int) *Buffer {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	b := &Buffer{
		rows:          rows,
		cols:          cols,
		autowrap:      true,
		scrollBottom:  rows - 1,
		traceSink:     func(string) {},
	}
	b.grid = newGrid(rows, cols)
	return b
}

func newGrid(rows, cols int) [][]Cell {
	grid := make([][]Cell, rows)
	for r := range grid {
		row := make([]Cell, cols+1)
		for c := range row {
			row[c] = blankCell
		}
		grid[r] = row
	}
	return grid
}

// SetVerbose enables or disables line-clear tracing (spec.md §4.1).
func (b *Buffer) SetVerbose(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verbose = v
}

// SetTraceSink installs the callback invoked with the pre-clear content of
// a line when EL-2 is processed under verbose tracing. A nil sink is
// replaced with a no-op.
func (b *Buffer) SetTraceSink(sink func(line string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sink == nil {
		sink = func(string) {}
	}
	b.traceSink = sink
}

// Dimensions returns the reported (rows, cols) — cols excludes the
// sentinel column.
func (b *Buffer) Dimensions() (rows, cols int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows, b.cols
}

// Cursor returns the current cursor position. Col ranges over [0, cols]
// inclusive (the sentinel column is a valid cursor position).
func (b *Buffer) Cursor() (row, col int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorRow, b.cursorCol
}

// Write feeds a chunk of raw PTY output into the buffer. Byte streams may
// be split across arbitrary chunk boundaries — including inside an escape
// sequence or a multi-byte UTF-8 rune — without changing the result: the
// buffer carries incomplete trailing bytes into the next call.
func (b *Buffer) Write(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := data
	if len(b.pending) > 0 {
		buf = append(append([]byte(nil), b.pending...), data...)
		b.pending = nil
	}

	i := 0
	for i < len(buf) {
		consumed, needMore := b.step(buf[i:])
		if needMore {
			b.pending = append([]byte(nil), buf[i:]...)
			return
		}
		if consumed <= 0 {
			consumed = 1
		}
		i += consumed
	}
}

// Resize changes the grid dimensions, preserving as much existing content
// as fits in the new bounds. Cursor and scroll-region state are clamped
// to the new size.
func (b *Buffer) Resize(rows, cols int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	newGridData := newGrid(rows, cols)
	copyRows := min(rows, b.rows)
	copyCols := min(cols, b.cols) + 1 // +1 to include whichever sentinel is smaller
	for r := 0; r < copyRows; r++ {
		copy(newGridData[r][:copyCols], b.grid[r][:copyCols])
	}

	b.grid = newGridData
	b.rows, b.cols = rows, cols
	if b.cursorRow >= rows {
		b.cursorRow = rows - 1
	}
	if b.cursorCol > cols {
		b.cursorCol = cols
	}
	if b.scrollBottom >= rows || b.scrollBottom == 0 {
		b.scrollBottom = rows - 1
	}
	if b.scrollTop >= rows {
		b.scrollTop = 0
	}
}

// Lines returns the current screen as one string per row, each containing
// exactly the first cols columns (the sentinel column is never reported).
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderLinesLocked()
}

func (b *Buffer) renderLinesLocked() []string {
	lines := make([]string, b.rows)
	for r := 0; r < b.rows; r++ {
		buf := make([]rune, 0, b.cols)
		row := b.grid[r]
		for c := 0; c < b.cols; c++ {
			cell := row[c]
			if cell.Continuation {
				continue
			}
			if cell.Rune == 0 {
				buf = append(buf, ' ')
				continue
			}
			buf = append(buf, cell.Rune)
		}
		lines[r] = string(buf)
	}
	return lines
}

// Cell returns the cell at (row, col). Col may address the sentinel
// column (index cols). Out-of-range coordinates return the zero Cell.
func (b *Buffer) Cell(row, col int) Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if row < 0 || row >= b.rows || col < 0 || col > b.cols {
		return Cell{}
	}
	return b.grid[row][col]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// --- cursor motion and writing primitives, called from the ANSI parser ---

func (b *Buffer) putChar(r rune) {
	if b.cursorCol >= b.cols {
		if b.autowrap {
			b.carriageReturn()
			b.lineFeed()
		} else {
			b.cursorCol = b.cols
			return
		}
	}

	w := runeWidth(r)
	row, col := b.cursorRow, b.cursorCol
	b.grid[row][col] = Cell{Rune: r, Width: w, Fg: b.curFg, Bg: b.curBg, Attrs: b.curAttrs}
	if w == 2 && col+1 <= b.cols {
		b.grid[row][col+1] = Cell{Continuation: true}
	}

	newCol := col + w
	if newCol > b.cols {
		newCol = b.cols
	}
	b.cursorCol = newCol
}

func (b *Buffer) carriageReturn() {
	b.cursorCol = 0
}

func (b *Buffer) backspace() {
	if b.cursorCol > 0 {
		b.cursorCol--
	}
}

func (b *Buffer) tab() {
	next := ((b.cursorCol / defaultTabStop) + 1) * defaultTabStop
	if next > b.cols {
		next = b.cols
	}
	b.cursorCol = next
}

func (b *Buffer) lineFeed() {
	if b.cursorRow == b.scrollBottom {
		b.scrollUp(1)
		return
	}
	if b.cursorRow < b.rows-1 {
		b.cursorRow++
	}
}

func (b *Buffer) scrollUp(n int) {
	top, bottom := b.scrollTop, b.scrollBottom
	if bottom <= top {
		return
	}
	for i := 0; i < n; i++ {
		for r := top; r < bottom; r++ {
			b.grid[r] = b.grid[r+1]
		}
		blank := make([]Cell, b.cols+1)
		for c := range blank {
			blank[c] = blankCell
		}
		b.grid[bottom] = blank
	}
}

func (b *Buffer) cursorUp(n int) {
	b.cursorRow = max(0, b.cursorRow-n)
}

func (b *Buffer) cursorDown(n int) {
	b.cursorRow = min(b.rows-1, b.cursorRow+n)
}

func (b *Buffer) cursorForward(n int) {
	b.cursorCol = min(b.cols, b.cursorCol+n)
}

func (b *Buffer) cursorBack(n int) {
	b.cursorCol = max(0, b.cursorCol-n)
}

func (b *Buffer) cursorAbs(row, col int) {
	b.cursorRow = max(0, min(b.rows-1, row))
	b.cursorCol = max(0, min(b.cols, col))
}

func (b *Buffer) eraseLine(ps int) {
	row := b.grid[b.cursorRow]
	switch ps {
	case 0:
		for c := b.cursorCol; c < len(row); c++ {
			row[c] = blankCell
		}
	case 1:
		for c := 0; c <= b.cursorCol && c < len(row); c++ {
			row[c] = blankCell
		}
	case 2:
		if b.verbose {
			lines := b.renderLinesLocked()
			b.traceSink(lines[b.cursorRow])
		}
		for c := range row {
			row[c] = blankCell
		}
	}
}

func (b *Buffer) eraseDisplay(ps int) {
	switch ps {
	case 0:
		b.eraseLine(0)
		for r := b.cursorRow + 1; r < b.rows; r++ {
			b.clearRow(r)
		}
	case 1:
		b.eraseLine(1)
		for r := 0; r < b.cursorRow; r++ {
			b.clearRow(r)
		}
	case 2:
		for r := 0; r < b.rows; r++ {
			b.clearRow(r)
		}
	}
}

func (b *Buffer) clearRow(r int) {
	for c := range b.grid[r] {
		b.grid[r][c] = blankCell
	}
}

func (b *Buffer) setScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom >= b.rows {
		bottom = b.rows - 1
	}
	if top >= bottom {
		top, bottom = 0, b.rows-1
	}
	b.scrollTop, b.scrollBottom = top, bottom
	b.cursorAbs(top, 0)
}

func (b *Buffer) saveCursor() {
	b.savedRow, b.savedCol = b.cursorRow, b.cursorCol
	b.savedFg, b.savedBg, b.savedAttrs = b.curFg, b.curBg, b.curAttrs
}

func (b *Buffer) restoreCursor() {
	b.cursorRow, b.cursorCol = b.savedRow, b.savedCol
	b.curFg, b.curBg, b.curAttrs = b.savedFg, b.savedBg, b.savedAttrs
}
