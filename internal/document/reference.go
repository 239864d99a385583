package document

import (
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// Kind tells where a document came from.
type Kind int

const (
	KindFile Kind = iota
	KindURL
)

func (k Kind) String() string {
	if k == KindURL {
		return "url"
	}
	return "file"
}

// Reference is a handle on an opened document. References to downloads own
// a temporary file that Release removes.
type Reference struct {
	Source string
	Kind   Kind
	Path   string

	temporary bool
	released  bool
}

// Temporary reports whether Path is a download owned by the reference.
func (r *Reference) Temporary() bool {
	return r != nil && r.temporary
}

// Name is a short label for headers.
func (r *Reference) Name() string {
	if r == nil {
		return ""
	}
	if r.Kind == KindURL {
		if u, err := url.Parse(r.Source); err == nil {
			if base := path.Base(u.Path); base != "." && base != "/" {
				return base
			}
			return u.Host
		}
		return r.Source
	}
	return filepath.Base(r.Path)
}

// Release frees the temporary download, if any. User files are never
// touched. Calling Release more than once is a no-op.
func (r *Reference) Release() error {
	if r == nil || r.released {
		return nil
	}
	r.released = true
	if !r.Temporary() {
		return nil
	}
	if err := os.Remove(r.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
