// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package frame reconstructs a single game state integration request from
// a raw byte stream.
//
// Dota 2 delivers each snapshot as an HTTP/1.1 shaped POST: a request line,
// a small fixed set of headers, a blank line and exactly Content-Length
// bytes of JSON. A single socket read is not guaranteed to carry the full
// header block, let alone the body, so the Framer accepts bytes
// incrementally and reports when the payload is complete.
package frame

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Acknowledgement is the response expected by the game state integration
// client for every request. Failure to deliver this exact response causes
// the client to retry the request indefinitely.
const Acknowledgement = "HTTP/1.1 200 OK\ncontent-type: text/html\n"

// The payload sent on every game state integration request is usually
// between 50-60kb. The buffer starts small and grows to the declared
// Content-Length once the headers have been parsed.
const initialBufferSize = 1024

var crlfcrlf = []byte("\r\n\r\n")

// RequestSyntaxError occurs when the header block is structurally invalid,
// e.g. a header line without a colon or a malformed request line.
type RequestSyntaxError struct {
	Line string
}

// Error implements the error interface.
func (e RequestSyntaxError) Error() string {
	return fmt.Sprintf("malformed request syntax: %q", e.Line)
}

// MissingContentLengthError occurs when the header block completes without
// declaring a Content-Length, leaving the body length unknown.
type MissingContentLengthError struct{}

// Error implements the error interface.
func (e MissingContentLengthError) Error() string {
	return "missing Content-Length header in request"
}

// InvalidContentLengthError occurs when the Content-Length value is not a
// decimal ASCII number.
type InvalidContentLengthError struct {
	Value string
	Cause error
}

// Error implements the error interface.
func (e InvalidContentLengthError) Error() string {
	return fmt.Sprintf("invalid content length header: %q", e.Value)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidContentLengthError) Unwrap() error {
	return e.Cause
}

type state int

const (
	awaitHeaders state = iota
	headersComplete
	bodyComplete
)

// Framer incrementally parses one request from successive byte chunks.
//
// A Framer is stateless across connections: use one per connection and
// discard it once Feed reports completion. The zero value is not usable,
// call [New].
type Framer struct {
	buf        []byte
	state      state
	headerLen  int
	contentLen int
}

// New returns a Framer ready to accept bytes for a single request.
func New() *Framer {
	return &Framer{
		buf: make([]byte, 0, initialBufferSize),
	}
}

// Feed appends p to the internal buffer and attempts to make progress.
//
// It returns (nil, false, nil) while more bytes are required; this is the
// expected steady state and not an error. Once the header block and exactly
// Content-Length body bytes have arrived it returns (payload, true, nil)
// where payload holds only the body. Any non-nil error is fatal for the
// request: the buffered bytes cannot form a valid request.
//
// Bytes beyond the declared body length belong to a pipelined request,
// which the game client never sends; they are discarded.
func (f *Framer) Feed(p []byte) ([]byte, bool, error) {
	if f.state == bodyComplete {
		return nil, true, nil
	}

	f.buf = append(f.buf, p...)

	if f.state == awaitHeaders {
		end := bytes.Index(f.buf, crlfcrlf)
		if end < 0 {
			return nil, false, nil
		}

		n, err := parseHeaders(f.buf[:end])
		if err != nil {
			return nil, false, err
		}

		f.headerLen = end + len(crlfcrlf)
		f.contentLen = n
		f.state = headersComplete

		if need := f.headerLen + f.contentLen; cap(f.buf) < need {
			grown := make([]byte, len(f.buf), need)
			copy(grown, f.buf)
			f.buf = grown
		}
	}

	if len(f.buf) < f.headerLen+f.contentLen {
		return nil, false, nil
	}

	f.state = bodyComplete
	return f.buf[f.headerLen : f.headerLen+f.contentLen], true, nil
}

// BytesWanted reports how many more bytes are known to be required to
// complete the request. It returns 0 when the count is unknown, i.e. the
// header block has not completed yet.
func (f *Framer) BytesWanted() int {
	if f.state != headersComplete {
		return 0
	}
	return f.headerLen + f.contentLen - len(f.buf)
}

// parseHeaders scans the header block, up to but excluding the terminating
// blank line, and extracts the declared Content-Length.
func parseHeaders(block []byte) (int, error) {
	lines := strings.Split(string(block), "\r\n")
	if len(lines) == 0 {
		return 0, RequestSyntaxError{Line: string(block)}
	}

	// Request line: METHOD TARGET HTTP/VERSION. The method itself is not
	// validated; the game client only ever sends POST.
	if parts := strings.Split(lines[0], " "); len(parts) != 3 || !strings.HasPrefix(parts[2], "HTTP/") {
		return 0, RequestSyntaxError{Line: lines[0]}
	}

	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return 0, RequestSyntaxError{Line: line}
		}
		if !strings.EqualFold(name, "Content-Length") {
			continue
		}

		value = strings.TrimSpace(value)
		n, err := strconv.ParseUint(value, 10, 31)
		if err != nil {
			return 0, InvalidContentLengthError{Value: value, Cause: err}
		}
		return int(n), nil
	}

	return 0, MissingContentLengthError{}
}
