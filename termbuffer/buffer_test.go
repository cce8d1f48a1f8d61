package termbuffer

import (
	"strings"
	"testing"
)

func TestWriteSplitAcrossChunksMatchesWholeWrite(t *testing.T) {
	data := []byte("\x1b[1;1Hhello \x1b[32mworld\x1b[0m\r\n日本語\x1b[2K")

	whole := New(5, 20)
	whole.Write(data)

	for chunk := 1; chunk <= 3; chunk++ {
		split := New(5, 20)
		for i := 0; i < len(data); i += chunk {
			end := i + chunk
			if end > len(data) {
				end = len(data)
			}
			split.Write(data[i:end])
		}
		wantLines := whole.Lines()
		gotLines := split.Lines()
		for i := range wantLines {
			if gotLines[i] != wantLines[i] {
				t.Fatalf("chunk size %d: line %d mismatch: got %q want %q", chunk, i, gotLines[i], wantLines[i])
			}
		}
	}
}

func TestLinesNeverExceedReportedWidth(t *testing.T) {
	b := New(3, 10)
	b.Write([]byte(strings.Repeat("永", 20)))
	for i, line := range b.Lines() {
		if len([]rune(line)) > 10 {
			t.Fatalf("line %d has %d runes, want <= 10: %q", i, len([]rune(line)), line)
		}
	}
}

func TestCursorStaysWithinBounds(t *testing.T) {
	b := New(4, 8)
	b.Write([]byte("\x1b[100;100H"))
	row, col := b.Cursor()
	if row < 0 || row >= 4 {
		t.Fatalf("cursor row %d out of [0,4)", row)
	}
	if col < 0 || col > 8 {
		t.Fatalf("cursor col %d out of [0,8]", col)
	}
}

func TestWraparoundDoesNotDuplicateFrame(t *testing.T) {
	b := New(3, 10)
	b.Write([]byte("0123456789"))
	rowBefore, colBefore := b.Cursor()
	if rowBefore != 0 || colBefore != 10 {
		t.Fatalf("expected cursor parked at sentinel column (0,10), got (%d,%d)", rowBefore, colBefore)
	}

	b.Write([]byte("\x1b[1;1H"))
	before := b.Lines()[0]

	b.Write([]byte("0123456789"))
	after := b.Lines()[0]

	if before != after {
		t.Fatalf("redraw at same position changed line: before %q after %q", before, after)
	}
	row, col := b.Cursor()
	if row != 0 || col != 10 {
		t.Fatalf("expected cursor parked at sentinel column (0,10) after exact-width redraw, got (%d,%d)", row, col)
	}

	b.Write([]byte("X"))
	row, _ = b.Cursor()
	if row != 1 {
		t.Fatalf("expected the next printable char to wrap to row 1, got row %d", row)
	}
}

func TestResizeMidStreamPreservesContent(t *testing.T) {
	b := New(5, 20)
	b.Write([]byte("\x1b[1;1Hhello"))
	b.Resize(10, 40)
	rows, cols := b.Dimensions()
	if rows != 10 || cols != 40 {
		t.Fatalf("Dimensions() = (%d,%d), want (10,40)", rows, cols)
	}
	if got := b.Lines()[0]; !strings.HasPrefix(got, "hello") {
		t.Fatalf("line 0 after resize = %q, want prefix %q", got, "hello")
	}
}

func TestScrollRegionConfinesScrolling(t *testing.T) {
	b := New(5, 10)
	b.Write([]byte("\x1b[2;4r"))
	b.Write([]byte("\x1b[1;1Htop"))
	b.Write([]byte("\x1b[2;1Hline2\r\nline3\r\nline4\r\nline5"))
	lines := b.Lines()
	if lines[0] != "top       " {
		t.Fatalf("line outside scroll region was disturbed: %q", lines[0])
	}
}

func TestSGRTracksColorAndAttributes(t *testing.T) {
	b := New(2, 10)
	b.Write([]byte("\x1b[1;31mX"))
	cell := b.Cell(0, 0)
	if !cell.Attrs.Bold {
		t.Fatalf("expected bold attribute set")
	}
	if !cell.Fg.Indexed || cell.Fg.Value != 1 {
		t.Fatalf("expected fg indexed color 1, got %+v", cell.Fg)
	}
}

func TestOSCSequenceConsumedAndDiscarded(t *testing.T) {
	b := New(2, 20)
	b.Write([]byte("\x1b]0;window title\x07visible"))
	if got := b.Lines()[0]; !strings.HasPrefix(got, "visible") {
		t.Fatalf("line 0 = %q, want OSC stripped and %q visible", got, "visible")
	}
}

func TestWideCharacterOccupiesTwoColumns(t *testing.T) {
	b := New(2, 10)
	b.Write([]byte("永a"))
	c0 := b.Cell(0, 0)
	c1 := b.Cell(0, 1)
	if c0.Width != 2 {
		t.Fatalf("expected width 2 for wide rune, got %d", c0.Width)
	}
	if !c1.Continuation {
		t.Fatalf("expected continuation cell after wide rune")
	}
	if b.Cell(0, 2).Rune != 'a' {
		t.Fatalf("expected 'a' immediately after the wide rune's continuation cell")
	}
}
