package models

// User is a directory entry. ID is assigned once at creation and never changes.
type User struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// UserInput carries the client-editable fields of a user. A missing field
// decodes to the empty string and is treated the same as an empty one.
type UserInput struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// ValidationErrors maps a field name to a human-readable message. An empty
// map means the input is valid.
type ValidationErrors map[string]string

// Valid reports whether no field failed validation.
func (e ValidationErrors) Valid() bool {
	return len(e) == 0
}

// Apply overwrites the mutable fields of u with the input values.
func (in UserInput) Apply(u User) User {
	u.Nickname = in.Nickname
	u.Email = in.Email
	return u
}
