// Package session holds the reader's state: the open document, the model
// tier and the one live selection with its explanation result.
//
// Session is not safe for concurrent use; the TUI mutates it only from its
// update loop.
package session

import (
	"strings"
	"unicode/utf8"

	"github.com/csheth/pagelens/internal/document"
	"github.com/csheth/pagelens/internal/llm"
)

// MinSelectionChars is the shortest trimmed selection that opens a panel.
const MinSelectionChars = 3

// DismissReason records why a selection was cleared.
type DismissReason int

const (
	DismissEscape DismissReason = iota
	DismissOutsideClick
	DismissUnload
)

func (r DismissReason) String() string {
	switch r {
	case DismissOutsideClick:
		return "outside_click"
	case DismissUnload:
		return "unload"
	default:
		return "escape"
	}
}

// Selection is the live text selection.
type Selection struct {
	ID     uint64
	Text   string
	Anchor Rect
}

// Session is the single owned record of reader state.
type Session struct {
	doc       *document.Document
	model     llm.ModelChoice
	selection *Selection
	result    Result
	nextID    uint64
}

// New returns an empty session using model as the starting tier.
func New(model llm.ModelChoice) *Session {
	return &Session{model: llm.ParseModelChoice(string(model))}
}

// Document returns the open document, or nil.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Adopt makes doc the open document. The previous document's reference is
// released and any selection is cleared.
func (s *Session) Adopt(doc *document.Document) error {
	var err error
	if s.doc != nil && (doc == nil || s.doc.Ref != doc.Ref) {
		err = s.doc.Ref.Release()
	}
	s.clearSelection()
	s.doc = doc
	return err
}

// Unload closes the document and clears the selection.
func (s *Session) Unload() error {
	return s.Adopt(nil)
}

// Model is the tier used for the next explanation.
func (s *Session) Model() llm.ModelChoice {
	return s.model
}

// SetModel changes the tier. In-flight requests keep the tier they were
// issued with.
func (s *Session) SetModel(choice llm.ModelChoice) {
	s.model = llm.ParseModelChoice(string(choice))
}

// CycleModel advances to the next tier and returns it.
func (s *Session) CycleModel() llm.ModelChoice {
	s.model = s.model.Next()
	return s.model
}

// Qualifies reports whether text is long enough to explain.
func Qualifies(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinSelectionChars
}

// Select records a new selection and returns it with ok set. A selection
// that does not qualify, or arrives without a document, leaves the session
// untouched. A qualifying selection replaces the previous one and resets
// the result to pending.
func (s *Session) Select(text string, anchor Rect) (Selection, bool) {
	if s.doc == nil || !Qualifies(text) {
		return Selection{}, false
	}
	s.nextID++
	sel := Selection{ID: s.nextID, Text: strings.TrimSpace(text), Anchor: anchor}
	s.selection = &sel
	s.result = Result{Status: Pending}
	return sel, true
}

// Active returns the live selection.
func (s *Session) Active() (Selection, bool) {
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}

// Result returns the explanation result of the live selection.
func (s *Session) Result() (Result, bool) {
	if s.selection == nil {
		return Result{}, false
	}
	return s.result, true
}

// Resolve records the outcome for selection id. It returns false, and
// changes nothing, when id is not the live selection or the live
// selection already resolved.
func (s *Session) Resolve(id uint64, text string, err error) bool {
	if s.selection == nil || s.selection.ID != id || s.result.Status != Pending {
		return false
	}
	if err != nil {
		s.result = Result{Status: Failed, Err: err}
	} else {
		s.result = Result{Status: Succeeded, Text: text}
	}
	return true
}

// Dismiss clears the live selection. It reports whether there was one.
func (s *Session) Dismiss(reason DismissReason) bool {
	if s.selection == nil {
		return false
	}
	s.clearSelection()
	return true
}

func (s *Session) clearSelection() {
	s.selection = nil
	s.result = Result{}
}
