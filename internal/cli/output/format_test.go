package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type userRow struct {
	Name     string `json:"name" yaml:"name"`
	Unlisted bool   `json:"unlisted" yaml:"unlisted"`
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, false)

	require.NoError(t, p.Print([]userRow{{Name: "alice"}, {Name: "bob", Unlisted: true}}))
	assert.JSONEq(t, `[{"name":"alice","unlisted":false},{"name":"bob","unlisted":true}]`, buf.String())
}

func TestPrinter_YAML(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatYAML, false)

	require.NoError(t, p.Print(userRow{Name: "alice"}))
	assert.Equal(t, "name: alice\nunlisted: false\n", buf.String())
}

func TestPrinter_TableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)

	require.NoError(t, p.Print(map[string]int{"users": 2}))
	assert.JSONEq(t, `{"users":2}`, buf.String())
}

func TestPrinter_Status(t *testing.T) {
	var plain bytes.Buffer
	p := NewPrinter(&plain, FormatTable, false)
	p.Success("ok")
	p.Warning("careful")
	p.Error("failed")
	assert.Equal(t, "ok\ncareful\nfailed\n", plain.String())

	var colored bytes.Buffer
	NewPrinter(&colored, FormatTable, true).Warning("careful")
	assert.Equal(t, "\033[33mcareful\033[0m\n", colored.String())
}
