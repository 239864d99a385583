package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/csheth/pagelens/internal/tuitest"
)

func TestReaderExplainsKeyboardSelection(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary")
	}
	t.Parallel()

	var (
		mu       sync.Mutex
		received []string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text  string `json:"text"`
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		received = append(received, body.Text)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"explanation":"Entropy is disorder."}`))
	}))
	t.Cleanup(backend.Close)

	dir := t.TempDir()
	pdf, err := tuitest.WritePDF(dir, "thermo.pdf", "Entropy measures disorder")
	if err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: append(readerArgs(t, dir), "--server", backend.URL, pdf),
		Dir:     dir,
		Env:     isolatedEnv(dir),
		Width:   100,
		Height:  30,
		Steps: []tuitest.Step{
			tuitest.WaitFor("Page 1 of 1"),
			tuitest.Type("+"),
			tuitest.WaitFor("Zoom 120%"),
			tuitest.Type("v"),
			tuitest.WaitFor("HIGHLIGHT"),
			tuitest.Press(tuitest.KeyEnter),
			tuitest.WaitFor("Entropy is disorder."),
			tuitest.Press(tuitest.KeyEsc),
			tuitest.Pause(200 * time.Millisecond),
			tuitest.Press(tuitest.KeyCtrlC),
		},
		Timeout:        15 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	for _, want := range []string{"thermo.pdf", "Page 1 of 1", "Zoom 120%", "Entropy is disorder."} {
		if !rec.Contains(want) {
			t.Fatalf("expected %q on screen:\n%s", want, rec.Plain())
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || !strings.Contains(received[0], "Entropy measures") {
		t.Fatalf("backend received %q", received)
	}
}

func TestReaderRejectsNonPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary")
	}
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("just text"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: append(readerArgs(t, dir), path),
		Dir:     dir,
		Env:     isolatedEnv(dir),
		Width:   100,
		Height:  30,
		Steps: []tuitest.Step{
			tuitest.WaitFor("Only PDF files are supported"),
			tuitest.Press(tuitest.KeyCtrlC),
		},
		Timeout:        10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if !rec.Contains("Only PDF files are supported") {
		t.Fatalf("expected rejection alert:\n%s", rec.Plain())
	}
}

func readerArgs(t *testing.T, dir string) []string {
	t.Helper()
	return []string{
		buildBinary(t, moduleDir(t)),
		"--no-alt-screen",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--log-file", filepath.Join(dir, "pagelens.log"),
	}
}

// isolatedEnv keeps the user's config and cache out of the run.
func isolatedEnv(dir string) []string {
	return []string{
		"XDG_CONFIG_HOME=" + filepath.Join(dir, "config"),
		"XDG_CACHE_HOME=" + filepath.Join(dir, "cache"),
		"XDG_STATE_HOME=" + filepath.Join(dir, "state"),
		"PAGELENS_SERVER=",
		"PAGELENS_MODEL=",
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

var (
	buildOnce sync.Once
	buildPath string
	buildErr  error
	buildOut  []byte
)

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	buildOnce.Do(func() {
		tmp, err := os.MkdirTemp("", "pagelens-integration")
		if err != nil {
			buildErr = err
			return
		}
		name := "pagelens-integration"
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		buildPath = filepath.Join(tmp, name)
		cmd := exec.Command("go", "build", "-o", buildPath, ".")
		cmd.Dir = cmdDir
		buildOut, buildErr = cmd.CombinedOutput()
	})
	if buildErr != nil {
		t.Fatalf("build CLI: %v\n%s", buildErr, buildOut)
	}
	return buildPath
}
