package handler

import (
	"encoding/json"
	"net/http"

	"userdir/internal/platform/middleware"
	"userdir/internal/users/models"
	dErrors "userdir/pkg/domain-errors"
)

// UserRequest is the body of create and update calls.
type UserRequest struct {
	User models.UserInput `json:"user"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Nickname string `json:"nickname"`
}

// decodeUserRequest accepts JSON or an url-encoded or multipart HTML form
// with user[nickname] and user[email] fields.
func decodeUserRequest(r *http.Request) (models.UserInput, error) {
	if middleware.IsFormBody(r) {
		if err := middleware.ParseForm(r); err != nil {
			return models.UserInput{}, dErrors.New(dErrors.CodeBadRequest, "invalid form body")
		}
		return models.UserInput{
			Nickname: r.PostForm.Get("user[nickname]"),
			Email:    r.PostForm.Get("user[email]"),
		}, nil
	}

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.UserInput{}, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return req.User, nil
}

func decodeLoginRequest(r *http.Request) (LoginRequest, error) {
	if middleware.IsFormBody(r) {
		if err := middleware.ParseForm(r); err != nil {
			return LoginRequest{}, dErrors.New(dErrors.CodeBadRequest, "invalid form body")
		}
		return LoginRequest{Nickname: r.PostForm.Get("nickname")}, nil
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return LoginRequest{}, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return req, nil
}
