package finger

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest matches every *ParseError via errors.Is.
	ErrMalformedRequest = errors.New("malformed finger request")

	// ErrMissingCRLF is returned when the request line does not end in CRLF.
	ErrMissingCRLF = errors.New("request line does not end in CRLF")

	// ErrVerboseFlag is returned when /W is followed by something other than spaces.
	ErrVerboseFlag = errors.New("verbose flag must be followed by a space")

	// ErrUnexpectedInput is returned for characters the grammar does not allow.
	ErrUnexpectedInput = errors.New("unexpected input")

	// ErrRequestTooLong is returned when MaxRequestLength bytes arrive without a newline.
	ErrRequestTooLong = errors.New("request exceeds maximum length")

	// ErrUnexpectedEOF is returned when the client closes before sending a newline.
	ErrUnexpectedEOF = errors.New("connection closed before end of request")

	// ErrInvalidUTF8 is returned when the request line is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("request is not valid UTF-8")
)

// ParseError describes a request line that does not match the grammar.
// No reply is sent for such requests.
type ParseError struct {
	// Line is the raw request line, including its terminator if any.
	Line string

	// Offset is the byte offset of the first character that could not be parsed.
	Offset int

	// Err is one of ErrMissingCRLF, ErrVerboseFlag or ErrUnexpectedInput.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed finger request %q at offset %d: %v", e.Line, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrMalformedRequest) match any parse failure.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedRequest
}
