package finger

import (
	"strings"

	"github.com/marmos91/fingered/pkg/directory"
)

// Kind classifies a request by the reply it selects.
type Kind string

const (
	KindList    Kind = "list"
	KindUser    Kind = "user"
	KindForward Kind = "forward"
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	return string(k)
}

// verboseFlag selects the long-form reply.
const verboseFlag = "/W"

// Request is one parsed finger query.
//
// User and Forwarding are substrings of the line passed to ParseRequest and
// share its memory; a Request is only meaningful while that line is.
type Request struct {
	// Verbose is set when the /W flag was given.
	Verbose bool

	// User is the queried username; valid when HasUser is set.
	User    string
	HasUser bool

	// Forwarding is the "@host..." suffix, including the "@".
	Forwarding    string
	HasForwarding bool
}

// NewListRequest returns a request that lists the users on the server.
func NewListRequest(verbose bool) Request {
	return Request{Verbose: verbose}
}

// IsList reports whether no username was given.
func (r Request) IsList() bool {
	return !r.HasUser
}

// Kind returns how the request is answered. Forwarding wins over everything.
func (r Request) Kind() Kind {
	switch {
	case r.HasForwarding:
		return KindForward
	case r.HasUser:
		return KindUser
	default:
		return KindList
	}
}

// ParseRequest parses one request line. The line must end in CRLF and must
// be consumed entirely:
//
//	request  = ["/W" (1*SP / end)] [username] ["@" *char]
//	username = 1*(ALPHA / DIGIT / "_" / "." / "-")
func ParseRequest(line string) (Request, error) {
	body, ok := strings.CutSuffix(line, "\r\n")
	if !ok {
		return Request{}, &ParseError{Line: line, Offset: len(line), Err: ErrMissingCRLF}
	}

	var req Request
	pos := 0

	if strings.HasPrefix(body, verboseFlag) {
		req.Verbose = true
		pos = len(verboseFlag)

		if pos == len(body) {
			return req, nil
		}
		if body[pos] != ' ' {
			return Request{}, &ParseError{Line: line, Offset: pos, Err: ErrVerboseFlag}
		}
		for pos < len(body) && body[pos] == ' ' {
			pos++
		}
	}

	start := pos
	for pos < len(body) && directory.IsUsernameByte(body[pos]) {
		pos++
	}
	if pos > start {
		req.User = body[start:pos]
		req.HasUser = true
	}

	if pos < len(body) && body[pos] == '@' {
		// The host chain runs to the end of the line but may not contain
		// another line break.
		if i := strings.IndexAny(body[pos:], "\r\n"); i >= 0 {
			return Request{}, &ParseError{Line: line, Offset: pos + i, Err: ErrUnexpectedInput}
		}
		req.Forwarding = body[pos:]
		req.HasForwarding = true
		pos = len(body)
	}

	if pos != len(body) {
		return Request{}, &ParseError{Line: line, Offset: pos, Err: ErrUnexpectedInput}
	}

	return req, nil
}
