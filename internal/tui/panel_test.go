package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/pagelens/internal/llm"
	"github.com/csheth/pagelens/internal/session"
)

func TestPanelRender(t *testing.T) {
	sel := session.Selection{ID: 1, Text: "entropy"}
	tests := []struct {
		name   string
		result session.Result
		want   string
	}{
		{"pending", session.Result{Status: session.Pending}, "Explaining…"},
		{"succeeded", session.Result{Status: session.Succeeded, Text: "Disorder."}, "Disorder."},
		{"failed", session.Result{Status: session.Failed, Err: &llm.Error{Kind: llm.KindUnauthorized}}, "Invalid API key."},
		{"unclassified", session.Result{Status: session.Failed, Err: errors.New("boom")}, llm.UpstreamMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := stripANSI(panelView{selection: sel, result: tt.result, model: llm.ModelReasoning}.render(44, 20))
			if !strings.Contains(out, tt.want) {
				t.Fatalf("missing %q in\n%s", tt.want, out)
			}
			if !strings.Contains(out, "Reasoning") || !strings.Contains(out, "“entropy”") {
				t.Fatalf("header or preview missing:\n%s", out)
			}
			if w := lipgloss.Width(out); w != 44 {
				t.Fatalf("width = %d, want 44", w)
			}
		})
	}
}

func TestPanelPreviewIsCut(t *testing.T) {
	sel := session.Selection{ID: 1, Text: strings.Repeat("word ", 60)}
	out := stripANSI(panelView{selection: sel, result: session.Result{Status: session.Pending}}.render(44, 30))
	if !strings.Contains(out, "…”") {
		t.Fatalf("long selection should be previewed with an ellipsis:\n%s", out)
	}
}

func TestPanelFitsRows(t *testing.T) {
	sel := session.Selection{ID: 1, Text: "entropy"}
	long := strings.Repeat("A long explanation sentence. ", 40)
	out := panelView{selection: sel, result: session.Result{Status: session.Succeeded, Text: long}}.render(44, 14)
	if h := lipgloss.Height(out); h > 14 {
		t.Fatalf("height = %d, want at most 14", h)
	}
	if !strings.Contains(stripANSI(out), "…") {
		t.Fatal("cut explanation should end with an ellipsis")
	}
}
