package entities

import "time"

const (
	ProtocolLocal  = "local"
	ProtocolOAuth  = "oauth"
	ProtocolOAuth2 = "oauth2"
	ProtocolOpenID = "openid"
)

// Passport binds one authentication protocol/provider identity to exactly
// one local user. Local passports carry the password hash and reset code;
// provider passports carry the external identifier and provider tokens.
type Passport struct {
	PassportID string `json:"passport_id"`
	Protocol   string `json:"protocol"`
	Provider   string `json:"provider,omitempty"`
	Identifier string `json:"identifier,omitempty"`

	AccessToken string `json:"-"`
	TokenSecret string `json:"-"`
	Password    string `json:"-"`
	ResetCode   string `json:"-"`

	UserID string `json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is a provider profile normalized to the fields a local account
// can be created from.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
