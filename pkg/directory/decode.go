package directory

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// userSpec is the decoded shape of one users entry.
// Pointer fields distinguish "absent" from the zero value.
type userSpec struct {
	// FixCRLF converts newlines in info and long-info to CRLF and adds a
	// final CRLF if missing. Default: true.
	FixCRLF *bool `mapstructure:"fix-crlf" json:"fix-crlf,omitempty" jsonschema:"default=true"`

	// Info is the plain text returned when querying this user.
	Info *string `mapstructure:"info" json:"info,omitempty"`

	// LongInfo is the text returned when querying this user in verbose mode.
	LongInfo *string `mapstructure:"long-info" json:"long-info,omitempty"`

	// Unlisted excludes this user from listings. Default: false.
	Unlisted bool `mapstructure:"unlisted" json:"unlisted,omitempty"`
}

// FileSpec is the decoded shape of a users file. It is exported for schema
// generation; use Decode to build a Directory.
type FileSpec struct {
	// EnableIndex allows listing all users. Default: true.
	EnableIndex *bool `mapstructure:"enable-index" json:"enable-index,omitempty" jsonschema:"default=true"`

	// Users maps each username to either a plain info string or a record.
	Users map[string]userSpec `mapstructure:"users" json:"users" jsonschema:"required"`
}

var userSpecType = reflect.TypeOf(userSpec{})

// stringShorthandHook turns a bare string entry into {info: <string>}.
func stringShorthandHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != userSpecType || from.Kind() != reflect.String {
			return data, nil
		}
		return map[string]interface{}{"info": data}, nil
	}
}

// Decode builds a Directory from the decoded users file structure.
//
// Each entry of "users" is either a plain string (shorthand for info) or a
// record with fix-crlf, info, long-info and unlisted. Unknown keys are ignored;
// type mismatches and a missing users table are reported as *DecodeError.
// Texts are CRLF-normalized here, once.
func Decode(raw map[string]any) (*Directory, error) {
	if _, ok := raw["users"]; !ok {
		return nil, &DecodeError{Err: ErrMissingUsers}
	}

	var spec FileSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringShorthandHook(),
		Result:     &spec,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if spec.Users == nil {
		return nil, &DecodeError{Err: ErrMissingUsers}
	}

	users := make(map[string]*User, len(spec.Users))
	for name, us := range spec.Users {
		u := &User{
			Info:     us.Info,
			LongInfo: us.LongInfo,
			Unlisted: us.Unlisted,
			FixCRLF:  us.FixCRLF == nil || *us.FixCRLF,
		}
		u.normalize()
		users[name] = u
	}

	enableIndex := spec.EnableIndex == nil || *spec.EnableIndex
	return New(enableIndex, users), nil
}
