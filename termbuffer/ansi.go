package termbuffer

import "unicode/utf8"

const (
	escByte = 0x1b
	belByte = 0x07
)

// step consumes the next logical unit (a control character, an escape
// sequence, or a printable rune) from the head of data and applies its
// effect to the buffer. It returns the number of bytes consumed, or
// needMore=true if data does not yet contain a complete unit (the caller
// retains the unconsumed suffix and retries once more bytes arrive).
//
// step assumes b.mu is held.
func (b *Buffer) step(data []byte) (consumed int, needMore bool) {
	c0 := data[0]

	switch {
	case c0 == escByte:
		return b.stepEscape(data)
	case c0 < 0x20:
		return b.stepControl(c0), false
	default:
		return b.stepRune(data)
	}
}

func (b *Buffer) stepControl(c0 byte) int {
	switch c0 {
	case '\b':
		b.backspace()
	case '\t':
		b.tab()
	case '\n':
		b.lineFeed()
	case '\r':
		b.carriageReturn()
	case belByte:
		// BEL: ignored visually.
	}
	return 1
}

func (b *Buffer) stepRune(data []byte) (consumed int, needMore bool) {
	r, size := utf8.DecodeRune(data)
	if r == utf8.RuneError && size <= 1 {
		if !utf8.FullRune(data) && len(data) < utf8.UTFMax {
			return 0, true
		}
		b.putChar(utf8.RuneError)
		return 1, false
	}
	b.putChar(r)
	return size, false
}

func (b *Buffer) stepEscape(data []byte) (consumed int, needMore bool) {
	if len(data) < 2 {
		return 0, true
	}
	switch data[1] {
	case '[':
		return b.stepCSI(data)
	case ']':
		return b.stepTerminated(data, 2)
	case 'P', 'X', '^', '_':
		return b.stepTerminated(data, 2)
	case '7':
		b.saveCursor()
		return 2, false
	case '8':
		b.restoreCursor()
		return 2, false
	default:
		// Unrecognized two-byte escape (keypad modes, charset selection,
		// etc.): consumed and ignored, parser state preserved.
		return 2, false
	}
}

// stepTerminated consumes an OSC/DCS-style sequence starting at data[0]
// (ESC) through its terminator: BEL, or ST (ESC \). The payload is
// discarded. bodyStart is the offset where the payload begins (after the
// introducer).
func (b *Buffer) stepTerminated(data []byte, bodyStart int) (consumed int, needMore bool) {
	for i := bodyStart; i < len(data); i++ {
		if data[i] == belByte {
			return i + 1, false
		}
		if data[i] == escByte {
			if i+1 < len(data) {
				if data[i+1] == '\\' {
					return i + 2, false
				}
				// ESC not followed by '\': not a valid ST here, but some
				// terminals allow a new escape to implicitly end an OSC.
				// Treat conservatively: keep scanning.
			} else {
				return 0, true
			}
		}
	}
	return 0, true
}

// stepCSI parses a Control Sequence Introducer: ESC [ params... final.
// Parameter bytes are 0x30-0x3F, intermediates 0x20-0x2F, the final byte
// is 0x40-0x7E.
func (b *Buffer) stepCSI(data []byte) (consumed int, needMore bool) {
	for j := 2; j < len(data); j++ {
		c := data[j]
		if c >= 0x40 && c <= 0x7e {
			raw := data[2:j]
			private := false
			if len(raw) > 0 && (raw[0] == '?' || raw[0] == '>' || raw[0] == '<' || raw[0] == '=') {
				private = true
				raw = raw[1:]
			}
			params := parseCSIParams(raw)
			b.execCSI(params, private, c)
			return j + 1, false
		}
	}
	return 0, true
}

// parseCSIParams splits a CSI parameter string on ';' into integers.
// Missing or malformed fields become 0 (callers apply per-command
// defaults).
func parseCSIParams(raw []byte) []int {
	if len(raw) == 0 {
		return nil
	}
	params := make([]int, 0, 4)
	value := 0
	has := false
	flush := func() {
		params = append(params, value)
		value = 0
		has = false
	}
	for _, c := range raw {
		switch {
		case c >= '0' && c <= '9':
			value = value*10 + int(c-'0')
			has = true
		case c == ';':
			flush()
		default:
			// Sub-parameters (':') and stray bytes: ignore, keep scanning.
		}
	}
	if has || len(params) == 0 {
		flush()
	}
	return params
}

func param(params []int, idx, def int) int {
	if idx >= len(params) || params[idx] == 0 {
		return def
	}
	return params[idx]
}

// execCSI applies the effect of one fully-parsed CSI sequence. Unknown
// final bytes are ignored: the effect is dropped but parser state is
// preserved, per spec.md §4.1.
func (b *Buffer) execCSI(params []int, private bool, final byte) {
	switch final {
	case 'H', 'f':
		b.cursorAbs(param(params, 0, 1)-1, param(params, 1, 1)-1)
	case 'A':
		b.cursorUp(param(params, 0, 1))
	case 'B':
		b.cursorDown(param(params, 0, 1))
	case 'C':
		b.cursorForward(param(params, 0, 1))
	case 'D':
		b.cursorBack(param(params, 0, 1))
	case 'J':
		b.eraseDisplay(param(params, 0, 0))
	case 'K':
		b.eraseLine(param(params, 0, 0))
	case 'm':
		b.execSGR(params)
	case 'r':
		top := param(params, 0, 1) - 1
		bottom := param(params, 1, b.rows) - 1
		b.setScrollRegion(top, bottom)
	case 's':
		b.saveCursor()
	case 'u':
		b.restoreCursor()
	case 'h', 'l':
		if private {
			b.execPrivateMode(params, final == 'h')
		}
	default:
		// Unsupported CSI: consumed, effect ignored.
	}
}

// execPrivateMode handles the small subset of DEC private modes that
// affect rendering semantics this package cares about. ?7 is autowrap
// (DECAWM); everything else (cursor visibility, alternate screen,
// bracketed paste, mouse reporting) is accepted and ignored — spec.md's
// Screen Buffer has no concept of cursor visibility or alternate screens.
func (b *Buffer) execPrivateMode(params []int, set bool) {
	for _, p := range params {
		if p == 7 {
			b.autowrap = set
		}
	}
}

func (b *Buffer) execSGR(params []int) {
	if len(params) == 0 {
		b.curFg, b.curBg, b.curAttrs = Color{}, Color{}, AttrFlags{}
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			b.curFg, b.curBg, b.curAttrs = Color{}, Color{}, AttrFlags{}
		case p == 1:
			b.curAttrs.Bold = true
		case p == 2:
			b.curAttrs.Dim = true
		case p == 3:
			b.curAttrs.Italic = true
		case p == 4:
			b.curAttrs.Underline = true
		case p == 5:
			b.curAttrs.Blink = true
		case p == 7:
			b.curAttrs.Reverse = true
		case p == 9:
			b.curAttrs.Strike = true
		case p == 22:
			b.curAttrs.Bold, b.curAttrs.Dim = false, false
		case p == 23:
			b.curAttrs.Italic = false
		case p == 24:
			b.curAttrs.Underline = false
		case p == 25:
			b.curAttrs.Blink = false
		case p == 27:
			b.curAttrs.Reverse = false
		case p == 29:
			b.curAttrs.Strike = false
		case p >= 30 && p <= 37:
			b.curFg = Color{Indexed: true, Value: uint8(p - 30)}
		case p == 38:
			color, consumed := parseExtendedColor(params[i+1:])
			if consumed > 0 {
				b.curFg = color
				i += consumed
			}
		case p == 39:
			b.curFg = Color{}
		case p >= 40 && p <= 47:
			b.curBg = Color{Indexed: true, Value: uint8(p - 40)}
		case p == 48:
			color, consumed := parseExtendedColor(params[i+1:])
			if consumed > 0 {
				b.curBg = color
				i += consumed
			}
		case p == 49:
			b.curBg = Color{}
		case p >= 90 && p <= 97:
			b.curFg = Color{Indexed: true, Value: uint8(p - 90 + 8)}
		case p >= 100 && p <= 107:
			b.curBg = Color{Indexed: true, Value: uint8(p - 100 + 8)}
		}
	}
}

// parseExtendedColor parses the tail of a 38;... or 48;... SGR sequence
// (256-color or true-color), returning how many further params it
// consumed.
func parseExtendedColor(rest []int) (Color, int) {
	if len(rest) == 0 {
		return Color{}, 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return Color{}, 0
		}
		return Color{Indexed: true, Value: uint8(rest[1])}, 2
	case 2:
		if len(rest) < 4 {
			return Color{}, 0
		}
		return Color{RGB: true, R: uint8(rest[1]), G: uint8(rest[2]), B: uint8(rest[3])}, 4
	default:
		return Color{}, 0
	}
}
