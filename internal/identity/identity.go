// Package identity supplies the current user's stable identifier.
// Authentication is out of scope; the HTTP layer trusts the X-User-ID
// header the way the original client trusted its signed-in session.
package identity

import "net/http"

// UserIDHeader carries the caller's identity on HTTP requests.
const UserIDHeader = "X-User-ID"

// Provider yields the current user id, if any.
type Provider interface {
	CurrentUserID() (string, bool)
}

// Static is a fixed identity, used in tests.
type Static string

func (s Static) CurrentUserID() (string, bool) {
	return string(s), s != ""
}

// FromRequest extracts the caller identity from an HTTP request.
func FromRequest(r *http.Request) (string, bool) {
	uid := r.Header.Get(UserIDHeader)
	return uid, uid != ""
}
