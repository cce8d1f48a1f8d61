package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// frameHeaderLength is the size of a frame header: a 4-byte
// little-endian payload length.
const frameHeaderLength = 4

// maxPayloadLength bounds a single frame's JSON payload. Session Events
// are small; this is generous headroom against a corrupt stream rather
// than a real operating limit.
const maxPayloadLength = 1 << 20

// WriteEvent serializes ev as JSON and writes it to w as one
// length-prefixed frame: [4 bytes little-endian length][JSON payload].
func WriteEvent(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}
	var header [frameHeaderLength]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadEvent reads one length-prefixed frame from r and decodes its JSON
// payload into a Session Event.
func ReadEvent(r io.Reader) (Event, error) {
	var header [frameHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Event{}, fmt.Errorf("read frame header: %w", err)
	}
	length := binary.LittleEndian.Uint32(header[:])
	if length > maxPayloadLength {
		return Event{}, fmt.Errorf("frame payload length %d exceeds maximum %d", length, maxPayloadLength)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Event{}, fmt.Errorf("read frame payload: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("unmarshal session event: %w", err)
	}
	return ev, nil
}
