package handler

import "userdir/internal/users/models"

// ListResponse is the body of GET /users.
type ListResponse struct {
	Term            string              `json:"term"`
	Users           []models.User       `json:"users"`
	IsAuthenticated bool                `json:"is_authenticated"`
	Flash           map[string][]string `json:"flash"`
}

// FormResponse carries a user back to a form, with field errors when a
// submission was rejected.
type FormResponse struct {
	User   models.User             `json:"user"`
	Errors models.ValidationErrors `json:"errors,omitempty"`
}
