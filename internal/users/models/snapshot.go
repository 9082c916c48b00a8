package models

import "encoding/json"

// Snapshot is the full set of users at a point in time, keyed by ID.
// Iteration follows first-insertion order; overwriting an existing ID keeps
// its position. The JSON form is a list of users.
type Snapshot struct {
	order []string
	byID  map[string]User
}

// NewSnapshot indexes users by ID. A later entry with a repeated ID replaces
// the earlier one in place.
func NewSnapshot(users ...User) *Snapshot {
	s := &Snapshot{byID: make(map[string]User, len(users))}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

// Len returns the number of users.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Get looks a user up by ID.
func (s *Snapshot) Get(id string) (User, bool) {
	if s == nil {
		return User{}, false
	}
	u, ok := s.byID[id]
	return u, ok
}

// Put inserts or overwrites the user with u.ID.
func (s *Snapshot) Put(u User) {
	if s.byID == nil {
		s.byID = make(map[string]User)
	}
	if _, ok := s.byID[u.ID]; !ok {
		s.order = append(s.order, u.ID)
	}
	s.byID[u.ID] = u
}

// Delete removes id if present.
func (s *Snapshot) Delete(id string) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Users returns the users in iteration order.
func (s *Snapshot) Users() []User {
	if s == nil {
		return []User{}
	}
	out := make([]User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// FirstWhere returns the first user, in iteration order, matching fn.
func (s *Snapshot) FirstWhere(fn func(User) bool) (User, bool) {
	for _, u := range s.Users() {
		if fn(u) {
			return u, true
		}
	}
	return User{}, false
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	return NewSnapshot(s.Users()...)
}

// Map returns the snapshot as a plain mapping. Order is lost.
func (s *Snapshot) Map() map[string]User {
	out := make(map[string]User, s.Len())
	for _, u := range s.Users() {
		out[u.ID] = u
	}
	return out
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Users())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return err
	}
	*s = *NewSnapshot(users...)
	return nil
}
