package tuitest

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestResponderAnswersQueriesInOrder(t *testing.T) {
	w := &recordingWriter{}
	tr := newTerminalResponder(w)
	tr.Process([]byte("\x1b]11;?\x07draw\x1b[6n"))
	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if string(w.got) != want {
		t.Fatalf("got %q, want %q", w.got, want)
	}
}

func TestResponderKeepsBoundedTail(t *testing.T) {
	w := &recordingWriter{}
	tr := newTerminalResponder(w)
	tr.Process([]byte(strings.Repeat("x", 1000)))
	if len(tr.buf) != responderTail {
		t.Fatalf("buffer length = %d, want %d", len(tr.buf), responderTail)
	}
	if len(w.got) != 0 {
		t.Fatalf("unexpected reply %q", w.got)
	}
}

func TestWaitUntilSeesStrippedText(t *testing.T) {
	t.Parallel()

	out := &screen{}
	go func() {
		time.Sleep(50 * time.Millisecond)
		out.write([]byte("\x1b[1mPage 1\x1b[0m of 2\r\n"))
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := waitUntil(ctx, out, "Page 1 of 2"); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitUntilHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := waitUntil(ctx, &screen{}, "never"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestStepBuilders(t *testing.T) {
	if s := WaitFor("ready"); s.Until != "ready" || s.Input != nil {
		t.Fatalf("unexpected wait step %#v", s)
	}
	if s := Type("v"); string(s.Input) != "v" {
		t.Fatalf("unexpected type step %#v", s)
	}
	if s := Pause(time.Second); s.Delay != time.Second || s.Input != nil {
		t.Fatalf("unexpected pause step %#v", s)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without a command")
	}
}
