package termbuffer

import "testing"

func writeLines(b *Buffer, lines []string) {
	for i, l := range lines {
		b.Write([]byte("\x1b[" + itoa(i+1) + ";1H" + l))
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestFindBoxesSimpleFrame(t *testing.T) {
	b := New(5, 20)
	writeLines(b, []string{
		"",
		"╭──────────╮",
		"│ hello    │",
		"╰──────────╯",
		"",
	})

	boxes := b.FindBoxes()
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d: %+v", len(boxes), boxes)
	}
	box := boxes[0]
	if box.Top != 1 || box.Bottom != 3 {
		t.Fatalf("expected box rows [1,3], got [%d,%d]", box.Top, box.Bottom)
	}
	if len(box.ContentLines) != 1 {
		t.Fatalf("expected 1 content line, got %d", len(box.ContentLines))
	}
}

func TestFindBoxesNestedFindsOuterBox(t *testing.T) {
	b := New(8, 30)
	writeLines(b, []string{
		"╭────────────────────╮",
		"│ ╭──────────╮       │",
		"│ │ inner    │       │",
		"│ ╰──────────╯       │",
		"╰────────────────────╯",
	})

	boxes := b.FindBoxes()
	if len(boxes) == 0 {
		t.Fatalf("expected at least one box")
	}
	// The outer box's top-left corner should be matched first (smallest
	// enclosing rectangle from that corner is itself, since the first
	// candidate right-corner scan stops at the first ╮ on that row).
	found := false
	for _, box := range boxes {
		if box.Top == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected outer box starting at row 0, got %+v", boxes)
	}
}

func TestFindBoxesNoFrameReturnsEmpty(t *testing.T) {
	b := New(3, 20)
	b.Write([]byte("just some text, no box here"))
	boxes := b.FindBoxes()
	if len(boxes) != 0 {
		t.Fatalf("expected no boxes, got %d: %+v", len(boxes), boxes)
	}
}

func TestFindBoxesIncompleteFrameIgnored(t *testing.T) {
	b := New(3, 20)
	writeLines(b, []string{
		"╭──────────╮",
		"│ no bottom",
		"",
	})
	boxes := b.FindBoxes()
	if len(boxes) != 0 {
		t.Fatalf("expected no boxes for an unterminated frame, got %d", len(boxes))
	}
}
