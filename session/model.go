package session

// Role is a named authority granted to a user by the backend.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the authenticated account as returned by the backend `me`,
// `login`, and `register` operations.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Roles     []Role `json:"roles"`
	Activated bool   `json:"activated"`
}

// HasRole reports whether u carries a role named name. A nil user has no roles.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Roles != nil {
		out.Roles = make([]Role, len(u.Roles))
		copy(out.Roles, u.Roles)
	}
	return &out
}

// Session is a read-only snapshot of the client-side authentication state.
//
// IsAuthenticated implies User != nil. Error is empty when no operation has
// failed since the last pending transition or ClearError.
type Session struct {
	User            *User
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// HasRole reports whether the session user carries the named role.
func (s Session) HasRole(name string) bool {
	return s.User.HasRole(name)
}

func (s Session) clone() Session {
	s.User = s.User.Clone()
	return s
}
