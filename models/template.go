package models

// Template is a message template. The API returns templates as a map keyed by
// id; the id doubles as the selector value.
type Template struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreatorNamePlaceholder is substituted with the recipient's display name.
const CreatorNamePlaceholder = "${creator_name}"
