package finger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_Valid(t *testing.T) {
	tests := []struct {
		line string
		want Request
		kind Kind
	}{
		{"\r\n", Request{}, KindList},
		{"/W\r\n", Request{Verbose: true}, KindList},
		{"/W \r\n", Request{Verbose: true}, KindList},
		{"bob\r\n", Request{User: "bob", HasUser: true}, KindUser},
		{"/W bob\r\n", Request{Verbose: true, User: "bob", HasUser: true}, KindUser},
		{"/W    bob\r\n", Request{Verbose: true, User: "bob", HasUser: true}, KindUser},
		{"bob@example.com\r\n", Request{User: "bob", HasUser: true, Forwarding: "@example.com", HasForwarding: true}, KindForward},
		{"@example.com\r\n", Request{Forwarding: "@example.com", HasForwarding: true}, KindForward},
		{"@\r\n", Request{Forwarding: "@", HasForwarding: true}, KindForward},
		{"/W @a@b\r\n", Request{Verbose: true, Forwarding: "@a@b", HasForwarding: true}, KindForward},
		{"j.doe-99_x\r\n", Request{User: "j.doe-99_x", HasUser: true}, KindUser},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseRequest(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, !tt.want.HasUser, got.IsList())
		})
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	tests := []struct {
		line   string
		err    error
		offset int
	}{
		{"bob", ErrMissingCRLF, 3},
		{"bob\n", ErrMissingCRLF, 4},
		{"", ErrMissingCRLF, 0},
		{"/Wbob\r\n", ErrVerboseFlag, 2},
		{"/W\tbob\r\n", ErrVerboseFlag, 2},
		{" bob\r\n", ErrUnexpectedInput, 0},
		{"bob \r\n", ErrUnexpectedInput, 3},
		{"bob smith\r\n", ErrUnexpectedInput, 3},
		{"b!ob\r\n", ErrUnexpectedInput, 1},
		{"/w bob\r\n", ErrUnexpectedInput, 0},
		{"bob@ho\rst\r\n", ErrUnexpectedInput, 6},
		{"/W bob /W\r\n", ErrUnexpectedInput, 6},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseRequest(tt.line)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, ErrMalformedRequest)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.offset, perr.Offset)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestParseRequest_FieldsShareLineMemory(t *testing.T) {
	line := "/W alice@host\r\n"
	req, err := ParseRequest(line)
	require.NoError(t, err)

	assert.Equal(t, line[3:8], req.User)
	assert.Equal(t, line[8:13], req.Forwarding)
}

func TestNewListRequest(t *testing.T) {
	req := NewListRequest(true)
	assert.True(t, req.Verbose)
	assert.True(t, req.IsList())
	assert.Equal(t, KindList, req.Kind())
	assert.Equal(t, "list", req.Kind().String())
}
