package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var extraneousWhitespace = regexp.MustCompile(`[ \t\f\v]+`)

// Page is the extracted text of one PDF page.
type Page struct {
	Number int
	Lines  []string
}

// Document is a loaded PDF.
type Document struct {
	Ref   *Reference
	Pages []Page
}

// PageCount reports the number of pages in the PDF.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Title is the label shown in the reader header.
func (d *Document) Title() string {
	if d == nil {
		return ""
	}
	return d.Ref.Name()
}

// Load parses ref and extracts each page's plain text. Pages without
// extractable text are kept, empty, so page numbers stay aligned.
func Load(ref *Reference) (doc *Document, err error) {
	if ref == nil {
		return nil, &LoadError{Err: fmt.Errorf("no document")}
	}
	// The PDF parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &LoadError{Source: ref.Source, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	file, reader, err := pdf.Open(ref.Path)
	if err != nil {
		return nil, &LoadError{Source: ref.Source, Err: fmt.Errorf("failed to open pdf: %w", err)}
	}
	defer file.Close()

	total := reader.NumPage()
	if total == 0 {
		return nil, &LoadError{Source: ref.Source, Err: fmt.Errorf("pdf has no pages")}
	}
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &LoadError{Source: ref.Source, Err: fmt.Errorf("failed to extract text from page %d: %w", i, err)}
		}
		pages = append(pages, Page{Number: i, Lines: splitLines(text)})
	}
	return &Document{Ref: ref, Pages: pages}, nil
}

// splitLines normalises whitespace and collapses runs of blank lines into
// single paragraph breaks.
func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	blank := true
	for _, line := range raw {
		line = strings.TrimSpace(extraneousWhitespace.ReplaceAllString(line, " "))
		if line == "" {
			if !blank {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		lines = append(lines, line)
		blank = false
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
