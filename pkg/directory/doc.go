// Package directory holds the finger user directory: the immutable set of
// configured users plus the listing flag, its decoding from an
// operator-maintained file, and the Store that swaps snapshots on reload.
//
// A Directory is never mutated after Decode returns. Reloading builds a new
// Directory and installs it atomically; connections that already took a
// snapshot keep using theirs until they finish.
package directory
