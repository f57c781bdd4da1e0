package finger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/marmos91/fingered/internal/logger"
	"github.com/marmos91/fingered/pkg/directory"
)

// MaxRequestLength bounds how many bytes are read while looking for the end
// of the request line.
const MaxRequestLength = 1024

// Fixed replies. The first two are the texts suggested by RFC 1288 3.2.1/3.2.2.
var (
	ReplyNoForwarding = []byte("Finger forwarding service denied\r\n")
	ReplyNoListing    = []byte("Finger online user list denied\r\n")
	ReplyUserNotFound = []byte("User not found\r\n")
	crlf              = []byte("\r\n")
)

// Outcome summarizes how a request was answered.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNotFound Outcome = "not_found"
	OutcomeDenied   Outcome = "denied"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeIOError  Outcome = "io_error"
)

// Result describes one completed (or failed) exchange.
type Result struct {
	Request      Request
	Outcome      Outcome
	BytesRead    int
	BytesWritten int
}

// ReadRequestLine reads up to MaxRequestLength bytes or through the first
// newline, whichever comes first, and returns the line including its newline.
//
// Bytes after the newline that were already buffered are discarded: the
// connection carries a single request.
func ReadRequestLine(r io.Reader) (string, error) {
	br := bufio.NewReaderSize(io.LimitReader(r, MaxRequestLength), MaxRequestLength)

	buf, err := br.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if len(buf) >= MaxRequestLength {
				return "", ErrRequestTooLong
			}
			return "", ErrUnexpectedEOF
		}
		return "", fmt.Errorf("failed to read request: %w", err)
	}

	if !utf8.Valid(buf) {
		return "", ErrInvalidUTF8
	}
	return string(buf), nil
}

// Handle runs the whole exchange for one connection: read one line, parse it,
// answer from dir and flush. It never closes r or w.
//
// Malformed, oversized or truncated requests return an error without writing
// anything; an unparseable line has no defined protocol answer.
func Handle(ctx context.Context, dir *directory.Directory, r io.Reader, w io.Writer) (Result, error) {
	var res Result

	line, err := ReadRequestLine(r)
	if err != nil {
		res.Outcome = outcomeForError(err)
		return res, err
	}
	res.BytesRead = len(line)

	req, err := ParseRequest(line)
	if err != nil {
		res.Outcome = OutcomeInvalid
		return res, err
	}
	res.Request = req

	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	outcome := Respond(ctx, dir, req, bw)
	if err := bw.Flush(); err != nil {
		res.Outcome = OutcomeIOError
		res.BytesWritten = cw.n
		return res, fmt.Errorf("failed to write reply: %w", err)
	}

	res.Outcome = outcome
	res.BytesWritten = cw.n
	return res, nil
}

// Respond writes the reply for req to w. Write errors surface when the
// caller flushes the buffered writer.
func Respond(ctx context.Context, dir *directory.Directory, req Request, w *bufio.Writer) Outcome {
	switch req.Kind() {
	case KindForward:
		logger.DebugCtx(ctx, "forwarding request denied", logger.KeyForwarding, req.Forwarding)
		_, _ = w.Write(ReplyNoForwarding)
		return OutcomeDenied

	case KindUser:
		user, ok := dir.Find(req.User)
		if !ok {
			logger.DebugCtx(ctx, "requested nonexistent user", logger.Username(req.User))
			_, _ = w.Write(ReplyUserNotFound)
			return OutcomeNotFound
		}

		logger.DebugCtx(ctx, "requested user", logger.Username(req.User), logger.KeyVerbose, req.Verbose)
		if req.Verbose {
			_, _ = w.WriteString(user.LongInfoText())
		} else {
			_, _ = w.WriteString(user.InfoText())
		}
		return OutcomeOK

	default:
		if !dir.EnableIndex {
			logger.DebugCtx(ctx, "user list denied by config")
			_, _ = w.Write(ReplyNoListing)
			return OutcomeDenied
		}

		logger.DebugCtx(ctx, "requested user list", logger.KeyUsers, len(dir.Listed()))
		for _, name := range dir.Listed() {
			_, _ = w.WriteString(name)
			_, _ = w.Write(crlf)
		}
		return OutcomeOK
	}
}

func outcomeForError(err error) Outcome {
	switch {
	case errors.Is(err, ErrRequestTooLong),
		errors.Is(err, ErrUnexpectedEOF),
		errors.Is(err, ErrInvalidUTF8),
		errors.Is(err, ErrMalformedRequest):
		return OutcomeInvalid
	default:
		return OutcomeIOError
	}
}

// countingWriter counts bytes that reached the underlying writer.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
