package directory

import (
	"sort"
)

// Directory is a decoded, immutable set of users.
type Directory struct {
	// EnableIndex allows unauthenticated listing of all users.
	// Individual users can still opt out with User.Unlisted.
	EnableIndex bool

	users  map[string]*User
	listed []string
	names  []string
}

// User is one directory entry.
//
// Info and LongInfo are already CRLF-normalized when FixCRLF is set.
type User struct {
	// Info is the reply for a plain query.
	Info *string

	// LongInfo is the reply for a verbose (/W) query.
	LongInfo *string

	// Unlisted hides the user from listings; direct queries still work.
	Unlisted bool

	// FixCRLF records whether line endings were normalized.
	FixCRLF bool
}

// New builds a Directory from already-normalized users. The map is copied.
func New(enableIndex bool, users map[string]*User) *Directory {
	d := &Directory{
		EnableIndex: enableIndex,
		users:       make(map[string]*User, len(users)),
		names:       make([]string, 0, len(users)),
	}

	for name, u := range users {
		d.users[name] = u
		d.names = append(d.names, name)
		if !u.Unlisted {
			d.listed = append(d.listed, name)
		}
	}

	sort.Strings(d.names)
	sort.Strings(d.listed)
	return d
}

// Empty returns a directory with no users and listing enabled.
func Empty() *Directory {
	return New(true, nil)
}

// Find looks up a user by exact, case-sensitive name.
func (d *Directory) Find(name string) (*User, bool) {
	u, ok := d.users[name]
	return u, ok
}

// Listed returns the names shown in a listing, sorted. The slice must not be modified.
func (d *Directory) Listed() []string {
	return d.listed
}

// Names returns every configured username, sorted, including unlisted ones.
func (d *Directory) Names() []string {
	return d.names
}

// Len returns the number of configured users.
func (d *Directory) Len() int {
	return len(d.users)
}

// InfoText returns the short-form reply: Info, else LongInfo, else "".
func (u *User) InfoText() string {
	switch {
	case u.Info != nil:
		return *u.Info
	case u.LongInfo != nil:
		return *u.LongInfo
	default:
		return ""
	}
}

// LongInfoText returns the verbose reply: LongInfo, else Info, else "".
func (u *User) LongInfoText() string {
	switch {
	case u.LongInfo != nil:
		return *u.LongInfo
	case u.Info != nil:
		return *u.Info
	default:
		return ""
	}
}
