// Package policy contains the access decision applied to every catalog
// endpoint: anyone may read, only staff may write.  The decision is a pure
// function of the HTTP method and the caller, so it carries no state and is
// safe to evaluate concurrently from any number of request goroutines.
package policy

// Caller is an authenticated principal as resolved by the auth middleware.
// A nil *Caller means the request carried no credentials (anonymous).
type Caller struct {
	UserID uint64 // users.id of the authenticated user
	Email  string // users.email, informational only
	Staff  bool   // true when the user holds administrative privileges
}

// safeMethods are the HTTP methods defined as not modifying server state.
var safeMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Permit reports whether a request with the given method may proceed to the
// handler.  Safe methods are always allowed, regardless of who (if anyone)
// is calling.  Every other method requires an authenticated caller with the
// Staff flag set.
//
// Permit never distinguishes *why* a request is denied; the surrounding
// middleware answers 401 when caller is nil and 403 otherwise.
func Permit(method string, caller *Caller) bool {
	if safeMethods[method] {
		return true
	}
	return caller != nil && caller.Staff
}
