package detector

import "strings"

// executionContext scans lines in reverse for the first line whose first
// non-whitespace codepoint is marker, and returns it stripped of that
// marker and trimmed. An empty string means no context is present.
func executionContext(lines []string, marker rune) string {
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimLeft(lines[i], " \t")
		if trimmed == "" {
			continue
		}
		r := []rune(trimmed)
		if r[0] != marker {
			continue
		}
		return strings.TrimSpace(string(r[1:]))
	}
	return ""
}

// containsAny reports whether s contains any of substrs.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// anyLineContainsAny reports whether any line contains any of substrs.
func anyLineContainsAny(lines []string, substrs ...string) bool {
	for _, line := range lines {
		if containsAny(line, substrs...) {
			return true
		}
	}
	return false
}

// anyBoxContentContainsAny reports whether any box's content lines
// contain any of substrs.
func anyBoxContentContainsAny(boxes []Box, substrs ...string) bool {
	for _, box := range boxes {
		if anyLineContainsAny(box.ContentLines, substrs...) {
			return true
		}
	}
	return false
}

// anyBoxBelowContainsAny reports whether any box's below-lines contain
// any of substrs.
func anyBoxBelowContainsAny(boxes []Box, substrs ...string) bool {
	for _, box := range boxes {
		if anyLineContainsAny(box.BelowLines, substrs...) {
			return true
		}
	}
	return false
}

// insideBoxContent reports whether row falls within any box's content
// region, inclusive.
func insideBoxContent(boxes []Box, row int) bool {
	for _, box := range boxes {
		if row >= box.ContentTop && row <= box.ContentBottom {
			return true
		}
	}
	return false
}

// anyLineOutsideBoxesContainsAny reports whether any line not inside a
// box's content region contains any of substrs.
func anyLineOutsideBoxesContainsAny(lines []string, boxes []Box, substrs ...string) bool {
	for i, line := range lines {
		if insideBoxContent(boxes, i) {
			continue
		}
		if containsAny(line, substrs...) {
			return true
		}
	}
	return false
}
