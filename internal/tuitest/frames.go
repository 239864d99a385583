package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one full-screen paint, delimited by an erase-display sequence.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

// Lines splits the plain frame into screen rows.
func (f Frame) Lines() []string {
	if f.Plain == "" {
		return nil
	}
	return strings.Split(f.Plain, "\n")
}

var (
	eraseDisplay = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	// CSI sequences, OSC strings (BEL or ST terminated) and charset shifts.
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?<>]*[A-Za-z]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|[\x0e\x0f]`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, segment := range eraseDisplay.Split(stream, -1) {
		segment = strings.TrimPrefix(strings.Trim(segment, "\x00"), "\x1b[H")
		plain := normalizeLines(stripANSI(segment))
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: segment, Plain: plain})
	}
	if len(frames) == 0 && stream != "" {
		frames = append(frames, Frame{ANSI: stream, Plain: normalizeLines(stripANSI(stream))})
	}
	return frames
}

// FinalFrame returns the last full-screen paint, if any.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// normalizeLines trims trailing blanks on each row and drops empty rows at
// the bottom of the screen.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

// Plain returns everything the program drew, without escape sequences.
func (r *Recording) Plain() string {
	if r == nil {
		return ""
	}
	return normalizeLines(stripANSI(strings.ReplaceAll(string(r.Raw), "\r", "")))
}

// Contains reports whether text was drawn at any point. The renderer only
// repaints changed lines, so this is more reliable than the final frame.
func (r *Recording) Contains(text string) bool {
	return strings.Contains(r.Plain(), text)
}
