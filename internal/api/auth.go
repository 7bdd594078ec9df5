// ABOUTME: Credential endpoints of the gateway client
// ABOUTME: Login, Register and GetCurrentUser with their wire shapes

package api

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges a username and password for a bearer token.
// The gateway expects form-urlencoded credentials on this endpoint.
// Fails with ErrAuth on bad credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token Token
	if err := c.doForm(ctx, "/login", form, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// registerRequest is the JSON body for POST /register.
type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Register creates an account and returns its bearer token.
// Fails with ErrValidation on duplicate username/email or malformed fields.
func (c *Client) Register(ctx context.Context, username, password, email, firstName, lastName string) (*Token, error) {
	body := registerRequest{
		Username:  username,
		Password:  password,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}

	var token Token
	if err := c.doJSON(ctx, http.MethodPost, "/register", nil, body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// GetCurrentUser resolves the identity behind the current bearer token.
// Fails with ErrAuth when the token is invalid or expired.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
