package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestJobBusWrapsPayload(t *testing.T) {
	bus := newJobBus(nil)
	cmd := bus.Start(jobKindExplain, func(context.Context) (tea.Msg, error) {
		return explanationMsg{selectionID: 7}, errors.New("upstream down")
	})
	msgs := collectMsgs(t, cmd)
	if len(msgs) != 2 {
		t.Fatalf("expected signal and result, got %d", len(msgs))
	}
	signal, ok := msgs[0].(jobSignalMsg)
	if !ok || signal.Snapshot.Status != jobStatusRunning || signal.Snapshot.ID != "explain-1" {
		t.Fatalf("unexpected signal %#v", msgs[0])
	}
	envelope, ok := msgs[1].(jobResultEnvelope)
	if !ok {
		t.Fatalf("expected envelope, got %T", msgs[1])
	}
	if envelope.Snapshot.Status != jobStatusFailed || envelope.Snapshot.Err != "upstream down" {
		t.Fatalf("unexpected snapshot %#v", envelope.Snapshot)
	}
	if payload, ok := envelope.Payload.(explanationMsg); !ok || payload.selectionID != 7 {
		t.Fatalf("payload not carried: %#v", envelope.Payload)
	}
}

func TestJobIDsIncrease(t *testing.T) {
	bus := newJobBus(nil)
	if a, b := bus.nextID(jobKindLoad), bus.nextID(jobKindLoad); a == b {
		t.Fatalf("ids should differ: %s %s", a, b)
	}
}

func TestJobBusCancelsSupersededJob(t *testing.T) {
	bus := newJobBus(nil)
	var first context.Context
	firstCmd := bus.Start(jobKindExplain, func(ctx context.Context) (tea.Msg, error) {
		first = ctx
		return nil, ctx.Err()
	})
	secondCmd := bus.Start(jobKindExplain, func(ctx context.Context) (tea.Msg, error) {
		return explanationMsg{selectionID: 2}, ctx.Err()
	})

	msgs := collectMsgs(t, firstCmd)
	if !errors.Is(first.Err(), context.Canceled) {
		t.Fatalf("first job should see a cancelled context, got %v", first.Err())
	}
	if envelope := msgs[len(msgs)-1].(jobResultEnvelope); envelope.Snapshot.Status != jobStatusCancelled {
		t.Fatalf("unexpected status %s", envelope.Snapshot.Status)
	}
	if id, ok := runningID(bus, jobKindExplain); !ok || id != "explain-2" {
		t.Fatalf("second job should still be running, got %q %v", id, ok)
	}

	msgs = collectMsgs(t, secondCmd)
	if envelope := msgs[len(msgs)-1].(jobResultEnvelope); envelope.Snapshot.Status != jobStatusSucceeded {
		t.Fatalf("unexpected status %s", envelope.Snapshot.Status)
	}
	if _, ok := runningID(bus, jobKindExplain); ok {
		t.Fatal("finished job should be cleared")
	}
}

func TestJobBusCancelAll(t *testing.T) {
	bus := newJobBus(nil)
	cmd := bus.Start(jobKindLoad, func(ctx context.Context) (tea.Msg, error) {
		return nil, ctx.Err()
	})
	bus.CancelAll()
	if _, ok := runningID(bus, jobKindLoad); ok {
		t.Fatal("cancelled job should be cleared")
	}
	msgs := collectMsgs(t, cmd)
	if envelope := msgs[len(msgs)-1].(jobResultEnvelope); envelope.Snapshot.Status != jobStatusCancelled {
		t.Fatalf("unexpected status %s", envelope.Snapshot.Status)
	}
}

func TestJobKindTimeouts(t *testing.T) {
	if jobKindLoad.timeout() != loadTimeout || jobKindExplain.timeout() != explainTimeout {
		t.Fatal("unexpected job timeouts")
	}
}

func runningID(bus *jobBus, kind jobKind) (string, bool) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	job, ok := bus.running[kind]
	return job.id, ok
}
