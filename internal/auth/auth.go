// Package auth decides whether the current principal may perform an action.
package auth

// Principal is the identity attached to a request. The zero value is the
// anonymous principal.
type Principal struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// Anonymous is the principal of a request without a valid session.
var Anonymous = Principal{}

// Authenticated reports whether p belongs to a signed-in user.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// Requirement names the capability an action needs.
type Requirement int

const (
	RequiresAuthenticated Requirement = iota + 1
	RequiresAdmin
)

func (r Requirement) String() string {
	switch r {
	case RequiresAuthenticated:
		return "authenticated"
	case RequiresAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// DenialReason says which requirement was not met. It never says anything
// about the resource being accessed.
type DenialReason int

const (
	LoginRequired DenialReason = iota + 1
	AdminRequired
)

// Decision is the outcome of Authorize: either allowed, or denied with a reason.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenialReason) Decision {
	return Decision{Reason: reason}
}

// Authorize checks p against req. Unknown requirements are denied.
func Authorize(p Principal, req Requirement) Decision {
	if !p.Authenticated() {
		return deny(LoginRequired)
	}
	switch req {
	case RequiresAuthenticated:
		return allow()
	case RequiresAdmin:
		if p.IsAdmin {
			return allow()
		}
		return deny(AdminRequired)
	default:
		return deny(AdminRequired)
	}
}
