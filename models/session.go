package models

// Session is the signed-in user's credential and cached profile. It is built
// once per request by the session middleware and passed explicitly to every
// upstream call.
type Session struct {
	Token   string `json:"-"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	// HasProfile is false when no cached profile exists for the token.
	HasProfile bool `json:"-"`
}

// Authenticated reports whether both the credential and the profile are present.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.HasProfile
}

// Profile is the /users/me response.
type Profile struct {
	ID      int64  `json:"id,omitempty"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// TokenResponse is returned by the token exchange and signup endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
