// Package authz decides whether an authenticated identity may act on an
// owned resource (a pot or a reservation).
package authz

import "errors"

// ErrNotFoundOrForbidden is returned for a denied access. It is
// deliberately the same error callers use for a missing resource, so a
// caller cannot learn whether another user's resource exists.
var ErrNotFoundOrForbidden = errors.New("resource not found")

// Identity is the opaque id of a user. Zero means anonymous.
type Identity uint64

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	Denied Decision = iota
	Granted
)

func (d Decision) String() string {
	if d == Granted {
		return "granted"
	}
	return "denied"
}

// Policy evaluates access of actor to a resource owned by owner.
type Policy interface {
	Decide(actor, owner Identity) Decision
}

// OwnerPolicy grants access only to the owner of the resource.
type OwnerPolicy struct{}

// Decide implements Policy.
func (OwnerPolicy) Decide(actor, owner Identity) Decision {
	if actor == 0 || actor != owner {
		return Denied
	}
	return Granted
}

// CanAccess reports whether p grants actor access to a resource of owner.
func CanAccess(p Policy, actor, owner Identity) bool {
	return p.Decide(actor, owner) == Granted
}

// Require returns ErrNotFoundOrForbidden unless p grants access.
func Require(p Policy, actor, owner Identity) error {
	if !CanAccess(p, actor, owner) {
		return ErrNotFoundOrForbidden
	}
	return nil
}
