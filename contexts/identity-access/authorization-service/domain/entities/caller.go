package entities

// Caller is the resolved request identity fed to the decision engine.
// A zero UserID marks the anonymous caller.
type Caller struct {
	UserID string
	Roles  []string
}

func (c Caller) Anonymous() bool {
	return c.UserID == ""
}

func (c Caller) HasRole(name string) bool {
	for _, role := range c.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// Decision is the outcome of an allowed authorization check. When
// ScopeToContributed is set, downstream list handlers must restrict
// results to ContributedIDs verbatim.
type Decision struct {
	ScopeToContributed bool
	ContributedIDs     []string
}
