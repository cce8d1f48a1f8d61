package protocol

import (
	"bytes"
	"testing"
	"time"
)

func TestWriteReadEventRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		NewConnect(Identity{LauncherID: "l1", WorkingDir: "/tmp/proj", ToolKind: "claude", ProjectName: "proj"}, ts),
		NewStateUpdate("l1", "s1", "busy", "", ts),
		NewContextUpdate("l1", "s1", "reading file", ts),
		NewDisconnect("l1", ts),
	}

	var buf bytes.Buffer
	for _, ev := range events {
		if err := WriteEvent(&buf, ev); err != nil {
			t.Fatalf("WriteEvent: %v", err)
		}
	}

	for i, want := range events {
		got, err := ReadEvent(&buf)
		if err != nil {
			t.Fatalf("ReadEvent(%d): %v", i, err)
		}
		if got.Kind != want.Kind || got.LauncherID != want.LauncherID || got.State != want.State {
			t.Fatalf("event %d mismatch: got %+v want %+v", i, got, want)
		}
	}
}

func TestReadEventRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, frameHeaderLength)
	header[0] = 0xff
	header[1] = 0xff
	header[2] = 0xff
	header[3] = 0xff
	buf.Write(header)

	if _, err := ReadEvent(&buf); err == nil {
		t.Fatalf("expected error for oversized frame length")
	}
}
