package service

// Action is an operation guarded by authorization
type Action string

const (
	ActionBroadcast Action = "broadcast"
)

// Decision is the result of an authorization check
type Decision bool

const (
	Denied  Decision = false
	Allowed Decision = true
)

// Authorizer decides which users may run admin-only actions
type Authorizer struct {
	adminID int64
}

// NewAuthorizer creates an authorizer for a single admin. adminID 0 disables admin actions.
func NewAuthorizer(adminID int64) *Authorizer {
	return &Authorizer{adminID: adminID}
}

// Authorize checks whether userID may perform action
func (a *Authorizer) Authorize(userID int64, action Action) Decision {
	switch action {
	case ActionBroadcast:
		if a.adminID != 0 && userID == a.adminID {
			return Allowed
		}
	}
	return Denied
}
