package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Source produces the raw, format-independent users structure.
type Source interface {
	// Read loads and parses the source. Parse failures are returned as *DecodeError.
	Read(ctx context.Context) (map[string]any, error)

	// Name identifies the source in logs and errors.
	Name() string
}

// Format is a users file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks the file format from the extension. Unknown
// extensions are read as TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// FileSource reads the users directory from a file on disk.
//
// Keys are decoded case-preserving: usernames are case-sensitive.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (s FileSource) Name() string {
	return s.Path
}

// Read reads and parses the file.
func (s FileSource) Read(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot open users file: %w", err)
	}

	raw, err := Parse(data, FormatForPath(s.Path))
	if err != nil {
		return nil, &DecodeError{Source: s.Path, Err: err}
	}
	return raw, nil
}

// Parse parses data in the given format into a generic structure.
// TOML syntax errors carry the line and column.
func Parse(data []byte, format Format) (map[string]any, error) {
	raw := make(map[string]any)

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()
				return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
			}
			return nil, err
		}
	}

	// An empty YAML document decodes to a nil map.
	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

// Load reads src and decodes it into a Directory.
func Load(ctx context.Context, src Source) (*Directory, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	raw, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}

	d, err := Decode(raw)
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) && derr.Source == "" {
			derr.Source = src.Name()
		}
		return nil, err
	}
	return d, nil
}
