// Package finger implements the server side of the Finger user information
// protocol (RFC 1288): parsing of the single request line a client sends and
// the reply written back from a directory snapshot.
//
// A request line looks like
//
//	[/W] [username] [@host...] CRLF
//
// The server answers exactly one request per connection. Forwarding
// requests (@host) are always denied.
package finger
