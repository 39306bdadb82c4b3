package entities

// Subject is the identity carried by a verified bearer token. The zero
// value is the anonymous sentinel used for requests without a credential.
type Subject struct {
	UserID   string
	Username string
	Email    string
}

func (s Subject) Anonymous() bool {
	return s.UserID == ""
}
