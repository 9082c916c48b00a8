package models

// Flash kinds used by the users handlers.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// FlashMessage is a one-shot notice shown on the next render.
type FlashMessage struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Session is the per-browser state carried between requests.
type Session struct {
	ID            string         `json:"id"`
	Authenticated bool           `json:"authenticated"`
	Flash         []FlashMessage `json:"flash,omitempty"`

	destroyed bool
}

// New returns an unauthenticated session with an empty flash queue.
func New(id string) *Session {
	return &Session{ID: id}
}

// AddFlash queues a message for the next render.
func (s *Session) AddFlash(kind, text string) {
	s.Flash = append(s.Flash, FlashMessage{Kind: kind, Text: text})
}

// DrainFlash returns the queued messages grouped by kind, in queue order,
// and empties the queue.
func (s *Session) DrainFlash() map[string][]string {
	out := make(map[string][]string)
	for _, m := range s.Flash {
		out[m.Kind] = append(out[m.Kind], m.Text)
	}
	s.Flash = nil
	return out
}

// Destroy clears all state and marks the session for removal.
func (s *Session) Destroy() {
	s.Authenticated = false
	s.Flash = nil
	s.destroyed = true
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool {
	return s.destroyed
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	if s.Flash != nil {
		c.Flash = append([]FlashMessage(nil), s.Flash...)
	}
	return &c
}
