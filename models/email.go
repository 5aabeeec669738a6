package models

// Email is one row of a client's shared inbox. MessageID is the
// de-duplication key; the API may return several rows for one message.
type Email struct {
	ID        string  `json:"id"`
	MessageID string  `json:"message_id"`
	Subject   string  `json:"subject"`
	Date      string  `json:"date"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Snippet   string  `json:"snippet"`
	Body      *string `json:"body,omitempty"`
	CreatorID *int64  `json:"creator_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	Reply     *string `json:"reply,omitempty"`
	ReplyDate *string `json:"reply_date,omitempty"`
}

const EmailStatusReplied = "replied"

// Replied reports whether the thread has an answer.
func (e Email) Replied() bool {
	return e.Status != nil && *e.Status == EmailStatusReplied
}

// Text returns the body when present, otherwise the snippet.
func (e Email) Text() string {
	if e.Body != nil && *e.Body != "" {
		return *e.Body
	}
	return e.Snippet
}

// ReplyRequest answers an inbox thread.
type ReplyRequest struct {
	EmailID string `json:"email_id" validate:"required"`
	Reply   string `json:"reply" validate:"required"`
}
