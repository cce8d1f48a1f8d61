package aggregator

import (
	"testing"
	"time"

	"github.com/kizaaku/climonitor/protocol"
)

func TestRegistryAppliesConnectStateUpdateAndDisconnect(t *testing.T) {
	var changes int
	r := NewRegistry(func() { changes++ })

	identity := protocol.Identity{LauncherID: "l1", ToolKind: "claude", ProjectName: "widget"}
	r.Apply(protocol.NewConnect(identity, time.Now()))

	snap := r.Snapshot()
	lv, ok := snap["l1"]
	if !ok {
		t.Fatalf("expected launcher l1 in snapshot after connect")
	}
	if lv.Identity.ProjectName != "widget" {
		t.Fatalf("unexpected identity in snapshot: %+v", lv.Identity)
	}
	if len(lv.Sessions) != 0 {
		t.Fatalf("expected no sessions immediately after connect")
	}

	r.Apply(protocol.NewStateUpdate("l1", "l1", "busy", "running tests", time.Now()))
	snap = r.Snapshot()
	sv := snap["l1"].Sessions["l1"]
	if sv.State != "busy" || sv.Context != "running tests" {
		t.Fatalf("unexpected session view after state update: %+v", sv)
	}

	r.Apply(protocol.NewContextUpdate("l1", "l1", "still running", time.Now()))
	snap = r.Snapshot()
	sv = snap["l1"].Sessions["l1"]
	if sv.State != "busy" {
		t.Fatalf("expected state to be preserved across a context-only update, got %q", sv.State)
	}
	if sv.Context != "still running" {
		t.Fatalf("expected context to update, got %q", sv.Context)
	}

	r.Apply(protocol.NewDisconnect("l1", time.Now()))
	snap = r.Snapshot()
	if _, ok := snap["l1"]; ok {
		t.Fatalf("expected launcher l1 to be removed after disconnect")
	}

	if changes == 0 {
		t.Fatalf("expected onChange to be invoked at least once")
	}
}

func TestRegistryIgnoresUpdatesForUnknownLauncher(t *testing.T) {
	r := NewRegistry(nil)
	// No Connect was ever applied for l2; this must not panic or create
	// a phantom entry.
	r.Apply(protocol.NewStateUpdate("l2", "s1", "busy", "", time.Now()))

	if snap := r.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty registry, got %+v", snap)
	}
}

func TestRegistrySnapshotIsIndependentCopy(t *testing.T) {
	r := NewRegistry(nil)
	r.Apply(protocol.NewConnect(protocol.Identity{LauncherID: "l1"}, time.Now()))
	r.Apply(protocol.NewStateUpdate("l1", "s1", "idle", "", time.Now()))

	snap := r.Snapshot()
	sv := snap["l1"].Sessions["s1"]
	sv.State = "mutated"
	snap["l1"].Sessions["s1"] = sv

	fresh := r.Snapshot()
	if fresh["l1"].Sessions["s1"].State != "idle" {
		t.Fatalf("mutating a snapshot must not affect the registry's internal state")
	}
}
