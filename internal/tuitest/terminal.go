package tuitest

import (
	"bytes"
	"io"
)

// queryReply pairs a terminal capability query with a canned answer.
type queryReply struct {
	query []byte
	reply []byte
}

// Answers for the queries bubbletea and termenv send at startup: cursor
// position, then foreground and background colour in both OSC terminators.
var terminalReplies = []queryReply{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderMaxBuffer = 256
	responderTail      = 64
)

// terminalResponder plays the terminal's side of startup queries so the
// program under test never blocks waiting for a reply.
type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, responderMaxBuffer)}
}

// Process scans chunk, together with any unmatched tail from earlier reads,
// and answers each query found.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > responderMaxBuffer {
		tr.buf = append(tr.buf[:0], tr.buf[len(tr.buf)-responderTail:]...)
	}
}

// answerNext replies to the earliest pending query and drops the buffer up to
// its end. It reports whether a query was found.
func (tr *terminalResponder) answerNext() bool {
	first, end := -1, 0
	var reply []byte
	for _, qr := range terminalReplies {
		idx := bytes.Index(tr.buf, qr.query)
		if idx >= 0 && (first < 0 || idx < first) {
			first, end, reply = idx, idx+len(qr.query), qr.reply
		}
	}
	if first < 0 {
		return false
	}
	tr.buf = tr.buf[end:]
	_, _ = tr.w.Write(reply)
	return true
}
