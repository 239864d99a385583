package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pagelens/internal/document"
	"github.com/csheth/pagelens/internal/llm"
	"github.com/csheth/pagelens/internal/session"
)

// documentMsg is the outcome of opening and parsing one input. seq ties it
// to the load that issued it so superseded loads can be discarded.
type documentMsg struct {
	seq   int
	input string
	doc   *document.Document
	err   error
}

// selectionMsg is a finished text selection on the reading surface.
type selectionMsg struct {
	text   string
	anchor session.Rect
}

// explanationMsg resolves the selection with the given id.
type explanationMsg struct {
	selectionID uint64
	model       llm.ModelChoice
	text        string
	err         error
}

func loadDocumentJob(seq int, input string, opts document.Options) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		ref, err := document.Open(ctx, input, opts)
		if err != nil {
			return documentMsg{seq: seq, input: input, err: err}, err
		}
		doc, err := document.Load(ref)
		if err != nil {
			_ = ref.Release()
			return documentMsg{seq: seq, input: input, err: err}, err
		}
		return documentMsg{seq: seq, input: input, doc: doc}, nil
	}
}

func explainJob(explainer Explainer, sel session.Selection, model llm.ModelChoice) jobRunner {
	text := sel.Text
	id := sel.ID
	return func(ctx context.Context) (tea.Msg, error) {
		explanation, err := explainer.Explain(ctx, text, model)
		return explanationMsg{selectionID: id, model: model, text: explanation, err: err}, err
	}
}
