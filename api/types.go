package api

import "github.com/MrEthical07/authclient/session"

// LoginInput is the `LoginInput` GraphQL input object.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput is the `RegisterInput` GraphQL input object.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	LangKey   string `json:"langKey,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// AuthPayload is the envelope returned by login, register, and refreshToken.
// The backend reports domain failures with Success=false rather than a
// GraphQL error.
type AuthPayload struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *session.User `json:"user"`
}
