package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/gabriel-vasile/mimetype"
)

const (
	pdfMIME            = "application/pdf"
	partialSuffix      = ".part"
	defaultHTTPTimeout = 90 * time.Second
)

// Options controls Open.
type Options struct {
	// HTTPClient fetches URLs. A client with a 90s timeout is used when nil.
	HTTPClient *http.Client
	// DownloadDir holds temporary downloads. Defaults to the XDG cache.
	DownloadDir string
}

// Open resolves input into a Reference. URLs are downloaded to a temporary
// file; anything else is a local path that must sniff as a PDF.
func Open(ctx context.Context, input string, opts Options) (*Reference, error) {
	input = cleanInput(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if isURL(input) {
		return download(ctx, input, opts)
	}
	return openFile(input)
}

// cleanInput undoes what terminals do to dropped files: surrounding quotes,
// backslash-escaped spaces and file:// prefixes.
func cleanInput(input string) string {
	input = strings.TrimSpace(input)
	if len(input) >= 2 {
		first, last := input[0], input[len(input)-1]
		if (first == '\'' || first == '"') && first == last {
			input = input[1 : len(input)-1]
		}
	}
	if strings.HasPrefix(input, "file://") {
		if u, err := url.Parse(input); err == nil && u.Path != "" {
			input = u.Path
		} else {
			input = strings.TrimPrefix(input, "file://")
		}
	}
	if !isURL(input) {
		input = strings.ReplaceAll(input, `\ `, " ")
	}
	return input
}

func isURL(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func openFile(input string) (*Reference, error) {
	path := expandHome(input)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Source: input, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Source: input, Err: fmt.Errorf("%s is a directory", path)}
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, &LoadError{Source: input, Err: err}
	}
	if !mtype.Is(pdfMIME) {
		return nil, &UnsupportedFileError{Path: path, MIME: mtype.String()}
	}
	return &Reference{Source: input, Kind: KindFile, Path: path}, nil
}

func download(ctx context.Context, rawURL string, opts Options) (*Reference, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	dir := opts.DownloadDir
	if dir == "" {
		dir = filepath.Join(xdg.CacheHome, "pagelens", "downloads")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &LoadError{Source: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &LoadError{Source: rawURL, Err: fmt.Errorf("pdf download failed: %s (%s)", resp.Status, strings.TrimSpace(string(body)))}
	}

	file, err := os.CreateTemp(dir, "doc-*.pdf"+partialSuffix)
	if err != nil {
		return nil, &LoadError{Source: rawURL, Err: err}
	}
	partialPath := file.Name()
	n, err := io.Copy(file, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err == nil && n == 0 {
		err = fmt.Errorf("empty response body")
	}
	if err != nil {
		os.Remove(partialPath)
		return nil, &LoadError{Source: rawURL, Err: err}
	}

	finalPath := strings.TrimSuffix(partialPath, partialSuffix)
	if err := os.Rename(partialPath, finalPath); err != nil {
		os.Remove(partialPath)
		return nil, &LoadError{Source: rawURL, Err: err}
	}
	return &Reference{Source: rawURL, Kind: KindURL, Path: finalPath, temporary: true}, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
