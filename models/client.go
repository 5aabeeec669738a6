package models

// Client is a tenant the creators are being discovered and contacted for.
type Client struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Plan  string `json:"plan,omitempty"`
}
